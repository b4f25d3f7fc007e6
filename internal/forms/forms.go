// Package forms declares the HTML form payloads and turns validator
// failures into per-field messages for re-rendering.
package forms

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Register is the sign-up form. Only name, username, email and password are persisted.
type Register struct {
	Name     string `form:"name" binding:"min=4,max=25"`
	Surname  string `form:"surname" binding:"min=4,max=25"`
	Username string `form:"username" binding:"min=5,max=35"`
	Position string `form:"position" binding:"min=4,max=25"`
	Email    string `form:"email" binding:"email"`
	// bcrypt rejects passwords longer than 72 bytes.
	Password string `form:"password" binding:"required,maxbytes=72,eqfield=Confirm"`
	Confirm  string `form:"confirm"`
}

func (f *Register) normalize() {
	f.Name = strings.TrimSpace(f.Name)
	f.Surname = strings.TrimSpace(f.Surname)
	f.Username = strings.TrimSpace(f.Username)
	f.Position = strings.TrimSpace(f.Position)
	f.Email = strings.TrimSpace(f.Email)
}

// Login is checked against the credential store, not by field rules.
type Login struct {
	Username string `form:"username"`
	Password string `form:"password"`
}

func (f *Login) normalize() {
	f.Username = strings.TrimSpace(f.Username)
}

// Article is used by both the add and edit forms.
type Article struct {
	Title   string `form:"title" binding:"min=4,max=25"`
	Content string `form:"content" binding:"min=20"`
}

func (f *Article) normalize() {
	f.Title = strings.TrimSpace(f.Title)
}

// normalizer forms clean their values after decoding and before validation,
// so the length rules hold for what is stored.
type normalizer interface {
	normalize()
}

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("maxbytes", maxBytes)
	}
}

// maxBytes limits the encoded length of a string, unlike max which counts runes.
func maxBytes(fl validator.FieldLevel) bool {
	n, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(fl.Field().String()) <= n
}

// Errors maps a form field name to its message.
type Errors map[string]string

func (e Errors) Add(field, msg string) {
	if _, exists := e[field]; !exists {
		e[field] = msg
	}
}

// Bind decodes the request form into dst, normalizes it and validates it.
// A nil Errors means the form is valid.
func Bind(c *gin.Context, dst any) Errors {
	if err := decode(c.Request, dst); err != nil {
		return Errors{"form": "The submitted form could not be read."}
	}
	if n, ok := dst.(normalizer); ok {
		n.normalize()
	}

	err := binding.Validator.ValidateStruct(dst)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return Errors{"form": "The submitted form could not be read."}
	}

	out := Errors{}
	for _, fe := range verrs {
		out.Add(fe.Field(), message(fe))
	}
	return out
}

func decode(req *http.Request, dst any) error {
	if err := req.ParseForm(); err != nil {
		return err
	}
	if err := req.ParseMultipartForm(32 << 20); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return err
	}
	return binding.MapFormWithTag(dst, req.Form, "form")
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		if fe.Field() == "Password" {
			return "Please set a password"
		}
		return "This field is required."
	case "eqfield":
		return "Your password does not match."
	case "email":
		return "Please enter a valid email."
	case "maxbytes":
		return fmt.Sprintf("Password cannot be longer than %s bytes.", fe.Param())
	case "min", "max":
		return lengthMessage(fe)
	default:
		return "Invalid value."
	}
}

// lengthMessage reports the whole allowed range when the field has one.
func lengthMessage(fe validator.FieldError) string {
	if r, ok := lengthRanges[fe.StructNamespace()]; ok {
		return fmt.Sprintf("Field must be between %d and %d characters long.", r[0], r[1])
	}
	if fe.Tag() == "min" {
		return fmt.Sprintf("Field must be at least %s characters long.", fe.Param())
	}
	return fmt.Sprintf("Field cannot be longer than %s characters.", fe.Param())
}

var lengthRanges = map[string][2]int{
	"Register.Name":     {4, 25},
	"Register.Surname":  {4, 25},
	"Register.Username": {5, 35},
	"Register.Position": {4, 25},
	"Article.Title":     {4, 25},
}
