package transport

// SubscribeRequest is the body of POST /subscribe. The "@" check lives in the
// service so the error message matches the public contract.
type SubscribeRequest struct {
	Email string `json:"email" validate:"max=254"`
}

// TokenRequest carries a confirmation or unsubscribe token.
type TokenRequest struct {
	Token string `json:"token" form:"token" validate:"required,max=128"`
}

// SubscribeResponse is returned by POST /subscribe.
type SubscribeResponse struct {
	Success          bool   `json:"success"`
	Message          string `json:"message"`
	AlreadyConfirmed bool   `json:"already_confirmed,omitempty"`
}

// ConfirmResponse is returned by the confirm endpoint.
type ConfirmResponse struct {
	Success bool   `json:"success"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// UnsubscribeLookupResponse lets the unsubscribe page show which address it affects.
type UnsubscribeLookupResponse struct {
	Email          string `json:"email"`
	Unsubscribed   bool   `json:"unsubscribed"`
	UnsubscribedAt string `json:"unsubscribed_at,omitempty"`
}

// UnsubscribeResponse is returned by POST /unsubscribe.
type UnsubscribeResponse struct {
	Success bool   `json:"success"`
	Email   string `json:"email"`
	Message string `json:"message"`
}
