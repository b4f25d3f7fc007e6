package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"gameblog/internal/forms"
	"gameblog/internal/service"
	"gameblog/internal/session"
)

func (h *Handler) registerForm(c *gin.Context) {
	h.render(c, http.StatusOK, "register.html", formData(forms.Register{}, nil))
}

func (h *Handler) register(c *gin.Context) {
	var form forms.Register
	errs := forms.Bind(c, &form)
	password := form.Password
	form.Password, form.Confirm = "", "" // never echoed back
	if errs != nil {
		h.render(c, http.StatusUnprocessableEntity, "register.html", formData(form, errs))
		return
	}

	_, err := h.users.Register(c.Request.Context(), service.Registration{
		Name:     form.Name,
		Username: form.Username,
		Email:    form.Email,
		Password: password,
	})
	if err != nil {
		if errors.Is(err, service.ErrUserAlreadyExists) {
			h.render(c, http.StatusUnprocessableEntity, "register.html",
				formData(form, forms.Errors{"Username": "This username is already taken."}))
			return
		}
		if errors.Is(err, service.ErrPasswordTooLong) {
			h.render(c, http.StatusUnprocessableEntity, "register.html",
				formData(form, forms.Errors{"Password": "Password cannot be longer than 72 bytes."}))
			return
		}
		h.internalError(c, err, "register user")
		return
	}

	h.log.WithField("username", form.Username).Info("user registered")
	h.flashRedirect(c, session.FlashSuccess, "Register Successful", "/login")
}

func (h *Handler) loginForm(c *gin.Context) {
	h.render(c, http.StatusOK, "login.html", formData(forms.Login{}, nil))
}

func (h *Handler) login(c *gin.Context) {
	var form forms.Login
	if errs := forms.Bind(c, &form); errs != nil {
		h.render(c, http.StatusUnprocessableEntity, "login.html", formData(forms.Login{Username: form.Username}, errs))
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), form.Username, form.Password)
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		h.flashRedirect(c, session.FlashDanger, "User not found", "/login")
		return
	case errors.Is(err, service.ErrInvalidCredentials):
		h.flashRedirect(c, session.FlashDanger, "Wrong Password", "/login")
		return
	case err != nil:
		h.internalError(c, err, "authenticate user")
		return
	}

	s := session.FromContext(c)
	s.End()
	s.Start(user.Username)
	h.flashRedirect(c, session.FlashSuccess, "Login Successful", "/")
}

func (h *Handler) logout(c *gin.Context) {
	session.FromContext(c).End()
	h.redirect(c, "/")
}
