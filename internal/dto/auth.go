package dto

import (
	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest is a password login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// QRLoginRequest is the redemption call made by the already-authenticated
// device after scanning the QR payload.
type QRLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Token    string `json:"token"`
	PcID     string `json:"pcId"`
}

// MessageResponse is a bare acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// AuthClaims are the session cookie's JWT claims.
type AuthClaims struct {
	UserID      string `json:"userId"`
	UserName    string `json:"userName"`
	Appellation string `json:"appellation"`
	Role        string `json:"role"`
	jwt.RegisteredClaims
}

// PageClaims wrap a pagination offset into a signed cursor token.
type PageClaims struct {
	Start int `json:"start"`
	jwt.RegisteredClaims
}

// QRClaim is the authenticated identity a confirming device writes into the
// pairing cache, keyed by the QR token, for Finalize to consume.
type QRClaim struct {
	UserID      string `json:"id"`
	UserName    string `json:"userName"`
	Appellation string `json:"appellation"`
	Role        string `json:"role"`
	PcID        string `json:"pcId"`
}
