package entity

import "fmt"

// Channel is the sales channel an order was imported from.
type Channel string

const (
	ChannelShopee Channel = "shopee"
	ChannelLazada Channel = "lazada"
	ChannelTikTok Channel = "tiktok"
	ChannelManual Channel = "manual"
)

var channels = map[Channel]struct{}{
	ChannelShopee: {},
	ChannelLazada: {},
	ChannelTikTok: {},
	ChannelManual: {},
}

func ParseChannel(s string) (Channel, error) {
	ch := Channel(s)
	if _, ok := channels[ch]; !ok {
		return "", fmt.Errorf("parse channel %q: %w", s, ErrInvalidData)
	}
	return ch, nil
}

func (c Channel) Valid() bool {
	_, ok := channels[c]
	return ok
}
