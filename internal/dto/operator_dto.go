package dto

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token    string `json:"token"`
	FullName string `json:"full_name"`
}

type OperatorReplyRequest struct {
	Text string `json:"text" validate:"required,max=4000"`
}

type SetPinnedRequest struct {
	Pinned bool `json:"pinned"`
}
