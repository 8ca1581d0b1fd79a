package dto

type UnreadCountResponse struct {
	Chat  int64 `json:"chat"`
	Lead  int64 `json:"lead"`
	Total int64 `json:"total"`
}
