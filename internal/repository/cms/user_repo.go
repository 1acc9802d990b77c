package cms

import (
	"context"
	"net/url"
	"strings"

	"go-admissions-backend/internal/domain"
)

type UserRepository struct {
	client *Client
}

func NewUserRepository(client *Client) *UserRepository {
	return &UserRepository{client: client}
}

// GetMe resolves the account behind a presented token. The users endpoint is
// not enveloped like content collections.
func (r *UserRepository) GetMe(ctx context.Context, token string) (*domain.User, error) {
	var me struct {
		ID        int64  `json:"id"`
		Username  string `json:"username"`
		Email     string `json:"email"`
		Confirmed bool   `json:"confirmed"`
		Blocked   bool   `json:"blocked"`
		Role      *struct {
			Name string `json:"name"`
			Type string `json:"type"`
		} `json:"role"`
	}

	q := url.Values{}
	q.Set("populate[role]", "true")

	if err := r.client.GetRaw(ctx, "/api/users/me", q, domain.UserCredential(token), &me); err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:        me.ID,
		Username:  me.Username,
		Email:     me.Email,
		Confirmed: me.Confirmed,
		Blocked:   me.Blocked,
	}
	if me.Role != nil {
		// role type is the stable machine name; display name is the fallback
		role := me.Role.Type
		if role == "" {
			role = me.Role.Name
		}
		user.Role = strings.ToLower(role)
	}
	return user, nil
}
