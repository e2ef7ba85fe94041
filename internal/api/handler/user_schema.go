package handler

import (
	"time"

	"github.com/sal22/qanda-api/internal/core/domain"
	"github.com/sal22/qanda-api/internal/core/ports"
)

// updateProfileRequest is a partial update; omitted fields are left untouched.
type updateProfileRequest struct {
	FirstName *string `json:"first_name" validate:"omitempty,min=1,max=50"`
	LastName  *string `json:"last_name"  validate:"omitempty,min=1,max=50"`
	Email     *string `json:"email"      validate:"omitempty,email"`
	Username  *string `json:"username"   validate:"omitempty,min=4,max=20"`
	Password  *string `json:"password"   validate:"omitempty,min=8,max=28"`
	Phone     *string `json:"phone"      validate:"omitempty,e164"`
	Job       *string `json:"job"        validate:"omitempty,max=50"`
	Bio       *string `json:"bio"        validate:"omitempty,max=500"`
	Avatar    *string `json:"avatar"     validate:"omitempty,max=100"`
}

func (r updateProfileRequest) patch() domain.UserPatch {
	return domain.UserPatch{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
		Username:  r.Username,
		Password:  r.Password,
		Phone:     r.Phone,
		Job:       r.Job,
		Bio:       r.Bio,
		Avatar:    r.Avatar,
	}
}

type userSummaryResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Job       string `json:"job,omitempty"`
	Avatar    string `json:"avatar,omitempty"`
}

type userProfileResponse struct {
	userSummaryResponse
	Bio            string    `json:"bio,omitempty"`
	QuestionsCount int64     `json:"questions_count"`
	AnswersCount   int64     `json:"answers_count"`
	CreatedAt      time.Time `json:"created_at"`
}

type ownUserResponse struct {
	userProfileResponse
	Email               string `json:"email"`
	Phone               string `json:"phone,omitempty"`
	UnreadNotifications int64  `json:"unread_notifications"`
}

// avatarURL turns a stored object name into the path it is served from.
func avatarURL(name string) string {
	if name == "" {
		return ""
	}
	return "/uploads/" + name
}

func toUserSummary(u *ports.UserSummary) *userSummaryResponse {
	if u == nil {
		return nil
	}
	return &userSummaryResponse{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Job:       u.Job,
		Avatar:    avatarURL(u.Avatar),
	}
}

func toUserProfile(p *ports.UserProfile) userProfileResponse {
	return userProfileResponse{
		userSummaryResponse: *toUserSummary(&p.UserSummary),
		Bio:                 p.Bio,
		QuestionsCount:      p.QuestionsCount,
		AnswersCount:        p.AnswersCount,
		CreatedAt:           p.CreatedAt,
	}
}

func toOwnUser(p *ports.OwnProfile) *ownUserResponse {
	return &ownUserResponse{
		userProfileResponse: toUserProfile(&p.UserProfile),
		Email:               p.Email,
		Phone:               p.Phone,
		UnreadNotifications: p.UnreadNotifications,
	}
}

// newUserAccount renders a freshly registered or logged-in account.
func newUserAccount(u *domain.User) *ownUserResponse {
	if u == nil {
		return nil
	}
	return &ownUserResponse{
		userProfileResponse: userProfileResponse{
			userSummaryResponse: userSummaryResponse{
				ID:        u.ID,
				Username:  u.Username,
				FirstName: u.FirstName,
				LastName:  u.LastName,
				Job:       u.Job,
				Avatar:    avatarURL(u.Avatar),
			},
			Bio:       u.Bio,
			CreatedAt: u.CreatedAt,
		},
		Email: u.Email,
		Phone: u.Phone,
	}
}
