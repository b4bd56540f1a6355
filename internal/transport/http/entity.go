package httpt

import "github.com/mapuy555/warranty-server/internal/entity"

type ErrorResponse struct {
	Error string `json:"error"`
}

type registerRequest struct {
	OrderID string `json:"order_id" binding:"required"`
	Name    string `json:"name"     binding:"required"`
	Phone   string `json:"phone"    binding:"required"`
	Email   string `json:"email"    binding:"required"`
	Address string `json:"address"  binding:"required"`
	UserID  string `json:"user_id"  binding:"required"`
}

func (r registerRequest) registrant() entity.Registrant {
	return entity.Registrant{
		Name:    r.Name,
		Phone:   r.Phone,
		Email:   r.Email,
		Address: r.Address,
		UserID:  r.UserID,
	}
}

type claimRequest struct {
	OrderID string `json:"order_id" binding:"required"`
	UserID  string `json:"user_id"  binding:"required"`
	Contact string `json:"contact"  binding:"required"`
	Reason  string `json:"reason"   binding:"required"`
}

type updateClaimStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// webhookRequest is the inbound chat-platform envelope. Only text
// messages and postbacks are acted on; everything else is ignored.
type webhookRequest struct {
	Events []webhookEvent `json:"events"`
}

type webhookEvent struct {
	Type    string `json:"type"`
	Source  struct {
		UserID string `json:"userId"`
	} `json:"source"`
	Message struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"message"`
	Postback struct {
		Data string `json:"data"`
	} `json:"postback"`
}
