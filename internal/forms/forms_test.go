package forms

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postContext(t *testing.T, values url.Values) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	c.Request = req
	return c
}

func validRegistration() url.Values {
	return url.Values{
		"name":     {"Alice"},
		"surname":  {"Smith"},
		"username": {"alice1"},
		"position": {"Tester"},
		"email":    {"alice@example.com"},
		"password": {"pw"},
		"confirm":  {"pw"},
	}
}

func TestBindRegister_Valid(t *testing.T) {
	var f Register
	errs := Bind(postContext(t, validRegistration()), &f)
	require.Nil(t, errs)
	assert.Equal(t, "alice1", f.Username)
	assert.Equal(t, "alice@example.com", f.Email)
}

func TestBindRegister_FieldErrors(t *testing.T) {
	tests := []struct {
		name   string
		field  string
		value  string
		errKey string
		errMsg string
	}{
		{"short name", "name", "Al", "Name", "Field must be between 4 and 25 characters long."},
		{"long surname", "surname", strings.Repeat("s", 26), "Surname", "Field must be between 4 and 25 characters long."},
		{"short username", "username", "abcd", "Username", "Field must be between 5 and 35 characters long."},
		{"empty position", "position", "", "Position", "Field must be between 4 and 25 characters long."},
		{"bad email", "email", "not-an-email", "Email", "Please enter a valid email."},
		{"empty password", "password", "", "Password", "Please set a password"},
		{"mismatch", "confirm", "other", "Password", "Your password does not match."},
		{"padded short username", "username", "  abcd ", "Username", "Field must be between 5 and 35 characters long."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values := validRegistration()
			values.Set(tt.field, tt.value)

			var f Register
			errs := Bind(postContext(t, values), &f)
			require.NotNil(t, errs)
			assert.Equal(t, tt.errMsg, errs[tt.errKey])
			assert.Len(t, errs, 1)
		})
	}
}

func TestBindRegister_CountsRunes(t *testing.T) {
	values := validRegistration()
	values.Set("name", "Ünal")

	var f Register
	assert.Nil(t, Bind(postContext(t, values), &f))
}

func TestBindArticle(t *testing.T) {
	var ok Article
	errs := Bind(postContext(t, url.Values{
		"title":   {"Chess"},
		"content": {"A strategy board game."},
	}), &ok)
	require.Nil(t, errs)
	assert.Equal(t, "Chess", ok.Title)

	var bad Article
	errs = Bind(postContext(t, url.Values{
		"title":   {"Go"},
		"content": {"too short"},
	}), &bad)
	require.NotNil(t, errs)
	assert.Equal(t, "Field must be between 4 and 25 characters long.", errs["Title"])
	assert.Equal(t, "Field must be at least 20 characters long.", errs["Content"])
}

func TestBindLogin_NoRules(t *testing.T) {
	var f Login
	assert.Nil(t, Bind(postContext(t, url.Values{}), &f))
}

func TestBind_TrimsBeforeValidating(t *testing.T) {
	var a Article
	errs := Bind(postContext(t, url.Values{"title": {"   abc"}, "content": {strings.Repeat("c", 20)}}), &a)
	require.NotNil(t, errs)
	assert.Equal(t, "Field must be between 4 and 25 characters long.", errs["Title"])

	a = Article{}
	errs = Bind(postContext(t, url.Values{"title": {"  Chess  "}, "content": {strings.Repeat("c", 20)}}), &a)
	require.Nil(t, errs)
	assert.Equal(t, "Chess", a.Title)

	values := validRegistration()
	values.Set("username", " alice1 ")
	values.Set("password", " pw ")
	values.Set("confirm", " pw ")
	var r Register
	require.Nil(t, Bind(postContext(t, values), &r))
	assert.Equal(t, "alice1", r.Username)
	assert.Equal(t, " pw ", r.Password)
}

func TestBindRegister_PasswordByteLimit(t *testing.T) {
	values := validRegistration()
	long := strings.Repeat("é", 37) // 74 bytes, 37 runes
	values.Set("password", long)
	values.Set("confirm", long)

	var f Register
	errs := Bind(postContext(t, values), &f)
	require.NotNil(t, errs)
	assert.Equal(t, "Password cannot be longer than 72 bytes.", errs["Password"])

	values.Set("password", strings.Repeat("p", 72))
	values.Set("confirm", strings.Repeat("p", 72))
	f = Register{}
	assert.Nil(t, Bind(postContext(t, values), &f))
}
