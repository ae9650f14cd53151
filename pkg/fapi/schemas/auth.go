package schemas

// TokenBody is returned by every flow that signs a user in.
type TokenBody struct {
	AccessToken string `json:"access_token" doc:"Signed bearer token"`
	TokenType   string `json:"token_type" doc:"Token type descriptor" example:"bearer"`
	ExpiresIn   int    `json:"expires_in" doc:"Access token lifetime in seconds" example:"3600"`
}

type TokenResponse struct {
	Body TokenBody
}

type MessageResponse struct {
	Body struct {
		Message string `json:"message" doc:"Human readable acknowledgement"`
	}
}

type SignupRequest struct {
	Body struct {
		Email       string `json:"email" format:"email" doc:"Account email, unique and case-sensitive" example:"a@x.com"`
		Password    string `json:"password" minLength:"1" doc:"Plaintext password"`
		DisplayName string `json:"display_name,omitempty" required:"false" doc:"Optional name shown to other users"`
	}
}

type LoginRequest struct {
	Body struct {
		Email    string `json:"email" format:"email" doc:"Account email" example:"a@x.com"`
		Password string `json:"password" doc:"Plaintext password"`
	}
}

type OAuthStartRequest struct {
	Provider string `path:"provider" doc:"Identity provider" example:"google"`
}

type OAuthStartResponse struct {
	Body struct {
		AuthorizationURL string `json:"authorization_url" doc:"URL the client should open to consent"`
	}
}

type OAuthCallbackRequest struct {
	Provider string `path:"provider" doc:"Identity provider" example:"google"`
	Body     struct {
		Code  string `json:"code" doc:"Authorization code returned by the provider"`
		State string `json:"state,omitempty" required:"false" doc:"State value from the authorization URL"`
	}
}

type OTPRequest struct {
	Body struct {
		Email string `json:"email" format:"email" doc:"Account email" example:"a@x.com"`
	}
}

type OTPVerifyRequest struct {
	Body struct {
		Email       string `json:"email" format:"email" doc:"Account email" example:"a@x.com"`
		OTP         string `json:"otp" doc:"Six digit one-time code" example:"012345"`
		NewPassword string `json:"new_password,omitempty" required:"false" doc:"Replaces the password when present"`
	}
}
