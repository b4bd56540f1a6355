package entity

// WarrantyStatus is the consolidated view of one order: the imported
// purchase, its registration if any, and every claim filed against it.
type WarrantyStatus struct {
	Order        *Order        `json:"order"`
	Registration *Registration `json:"registration,omitempty"`
	Claims       []*Claim      `json:"claims"`
}

func (ws *WarrantyStatus) Registered() bool {
	return ws.Registration != nil
}
