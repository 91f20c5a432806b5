package service

import "backoffice/lib"

// CardSelector picks the card to charge from a non-empty vault listing.
type CardSelector interface {
	Select(cards []lib.StoredCard) lib.StoredCard
}

// LastCardSelector charges the most recently stored card, which PayTR
// lists last.
type LastCardSelector struct{}

func (LastCardSelector) Select(cards []lib.StoredCard) lib.StoredCard {
	return cards[len(cards)-1]
}
