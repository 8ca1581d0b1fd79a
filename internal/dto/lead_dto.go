package dto

type QuoteLeadRequest struct {
	Name    string `json:"name" validate:"required,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"max=30"`
	Service string `json:"service" validate:"max=100"`
	Details string `json:"details" validate:"max=4000"`
}

type ContactLeadRequest struct {
	Name    string `json:"name" validate:"required,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message" validate:"required,max=4000"`
}
