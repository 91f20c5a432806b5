package helper

import (
	"backoffice/pkg/apperr"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"
	"unicode/utf8"
)

// PaymentTokenInput lists the signed fields of a stored-card payment. The
// field order of the concatenation is fixed by PayTR.
type PaymentTokenInput struct {
	MerchantID       string
	UserIP           string
	OrderID          string
	Email            string
	Amount           string
	PaymentType      string
	InstallmentCount string
	Currency         string
	Non3D            string
	StoreKey         string
}

type LinkTokenInput struct {
	Name           string
	Price          string
	Currency       string
	MaxInstallment string
	LinkType       string
	Lang           string
	Email          string
	StoreKey       string
}

// PaymentToken signs merchant_id + user_ip + merchant_oid + email +
// payment_amount + payment_type + installment_count + currency + non_3d +
// store key.
func PaymentToken(in PaymentTokenInput, provisionPassword string) (string, error) {
	return signFields(provisionPassword,
		in.MerchantID,
		in.UserIP,
		in.OrderID,
		in.Email,
		in.Amount,
		in.PaymentType,
		in.InstallmentCount,
		in.Currency,
		in.Non3D,
		in.StoreKey,
	)
}

func CardListToken(userToken, storeKey, provisionPassword string) (string, error) {
	return signFields(provisionPassword, userToken, storeKey)
}

func CardDeleteToken(cardToken, userToken, storeKey, provisionPassword string) (string, error) {
	return signFields(provisionPassword, cardToken, userToken, storeKey)
}

func LinkToken(in LinkTokenInput, provisionPassword string) (string, error) {
	return signFields(provisionPassword,
		in.Name,
		in.Price,
		in.Currency,
		in.MaxInstallment,
		in.LinkType,
		in.Lang,
		in.Email,
		in.StoreKey,
	)
}

func signFields(key string, fields ...string) (string, error) {
	if !utf8.ValidString(key) {
		return "", apperr.InvalidErr("Signing key is not valid UTF-8", fmt.Errorf("signing key is not valid utf-8"))
	}

	var b strings.Builder
	for i, f := range fields {
		if !utf8.ValidString(f) {
			return "", apperr.InvalidErr("Request contains invalid characters", fmt.Errorf("signed field %d is not valid utf-8", i))
		}
		b.WriteString(f)
	}

	return GenerateHMACBase64(b.String(), key), nil
}

// GenerateHMACBase64 returns base64(HMAC-SHA256(key, message)) with the
// standard alphabet and padding.
func GenerateHMACBase64(message, key string) string {
	h := hmac.New(sha256.New, []byte(key))
	h.Write([]byte(message))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}
