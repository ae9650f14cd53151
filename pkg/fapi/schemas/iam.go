package schemas

import "time"

// Principal is the caller identity carried by a verified bearer token.
type Principal struct {
	ID    int64
	Email string
}

type User struct {
	ID          int64     `json:"id" doc:"Unique identifier of the user"`
	Email       string    `json:"email" doc:"Email address of the user"`
	DisplayName string    `json:"display_name,omitempty" doc:"Name shown to other users"`
	Provider    string    `json:"provider" enum:"local,google,facebook" doc:"How the account was created"`
	CreatedAt   time.Time `json:"created_at" doc:"When the account was created"`
}

type MeResponse struct {
	Body struct {
		User User `json:"user"`
	}
}
