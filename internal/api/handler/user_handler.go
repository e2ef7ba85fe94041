package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sal22/qanda-api/internal/core/ports"
)

type UserHandler struct {
	userService ports.UserService
}

func NewUserHandler(userService ports.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// OwnData returns the caller's full profile.
//
// @Summary      Own profile
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  ownUserResponse
// @Failure      401  {object}  map[string]string
// @Router       /api/own-data [get]
func (h *UserHandler) OwnData(c echo.Context) error {
	p, err := actor(c)
	if err != nil {
		return err
	}
	own, err := h.userService.OwnData(c.Request().Context(), p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toOwnUser(own))
}

// UpdateProfile applies a partial update to the caller's account.
//
// @Summary      Update own profile
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateProfileRequest  true  "Fields to change"
// @Success      200   {object}  ownUserResponse
// @Failure      401   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /api/user [patch]
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	p, err := actor(c)
	if err != nil {
		return err
	}
	var req updateProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	own, err := h.userService.UpdateProfile(c.Request().Context(), p, req.patch())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toOwnUser(own))
}

// GetProfile returns a user's public profile.
//
// @Summary      Public profile
// @Tags         users
// @Produce      json
// @Param        username  path      string  true  "Username"
// @Success      200       {object}  userProfileResponse
// @Failure      404       {object}  map[string]string
// @Router       /api/users/{username} [get]
func (h *UserHandler) GetProfile(c echo.Context) error {
	profile, err := h.userService.GetProfile(c.Request().Context(), c.Param("username"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserProfile(profile))
}

// ListQuestions pages through the questions a user has asked.
//
// @Summary      Questions by user
// @Tags         users
// @Produce      json
// @Param        username  path      string  true   "Username"
// @Param        page      query     int     false  "Page number (1-indexed)"
// @Success      200       {object}  questionListResponse
// @Failure      404       {object}  map[string]string
// @Router       /api/users/{username}/questions [get]
func (h *UserHandler) ListQuestions(c echo.Context) error {
	page, err := h.userService.ListQuestions(c.Request().Context(), c.Param("username"), pageParam(c), viewer(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toQuestionList(page))
}
