package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the platform identity record. Email is nullable because social
// providers do not always disclose one; username is the public handle.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Username      string     `bun:"username,notnull,unique" json:"username,omitempty"`
	Email         *string    `bun:"email,unique,nullzero" json:"email,omitempty"`
	IsCertified   bool       `bun:"is_certified,notnull,default:false" json:"is_certified"`
	Profile       *UserProfile `bun:"rel:has-one,join:id=fk_user_id" json:"profile,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// EmailString returns the email or "" when none is on record.
func (u *User) EmailString() string {
	if u == nil || u.Email == nil {
		return ""
	}
	return *u.Email
}

// userIdentity adapts User to the Identity interface.
type userIdentity struct {
	user *User
}

func (i userIdentity) ID() string       { return i.user.ID.String() }
func (i userIdentity) Username() string { return i.user.Username }
func (i userIdentity) Email() string    { return i.user.EmailString() }

// NewIdentityFromUser wraps a user record as an Identity, nil-safe.
func NewIdentityFromUser(user *User) Identity {
	if user == nil {
		return nil
	}
	return userIdentity{user: user}
}

// UserProfile is the 1:1 display metadata row, cascade-deleted with its user.
type UserProfile struct {
	bun.BaseModel `bun:"table:user_profiles,alias:prf"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	DisplayName   string     `bun:"display_name,notnull" json:"display_name,omitempty"`
	ShortBio      string     `bun:"short_bio" json:"short_bio,omitempty"`
	Thumbnail     *string    `bun:"thumbnail,nullzero" json:"thumbnail,omitempty"`
	UserID        uuid.UUID  `bun:"fk_user_id,notnull,type:uuid" json:"fk_user_id,omitempty"`
	User          *User      `bun:"rel:belongs-to,join:fk_user_id=id" json:"-"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// UserMeta is the per-user notification settings placeholder created at
// registration. The core flows never read it back.
type UserMeta struct {
	bun.BaseModel  `bun:"table:user_metas,alias:umt"`
	ID             uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID         uuid.UUID  `bun:"fk_user_id,notnull,type:uuid" json:"fk_user_id,omitempty"`
	EmailNotify    bool       `bun:"email_notification,notnull,default:false" json:"email_notification"`
	EmailPromotion bool       `bun:"email_promotion,notnull,default:false" json:"email_promotion"`
	CreatedAt      *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt      *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// AuthToken is the issuance record behind every refresh token. Its ID rides in
// the refresh token's token_id claim; deleting the row revokes the token.
type AuthToken struct {
	bun.BaseModel `bun:"table:auth_tokens,alias:atk"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID        uuid.UUID  `bun:"fk_user_id,notnull,type:uuid" json:"fk_user_id,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}
