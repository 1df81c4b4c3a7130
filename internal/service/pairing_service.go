package service

import (
	"context"
	"encoding/json"
	"errors"

	"quizform/internal/cache"
	"quizform/internal/config"
	"quizform/internal/domain"
	"quizform/internal/dto"
	"quizform/internal/logger"
	"quizform/internal/util"
	"quizform/internal/ws"

	"go.uber.org/zap"
)

// PairingService owns the cross-device login relay: it pairs an anonymous
// display connection with short-lived QR tokens, lets an authenticated phone
// redeem one, and hands the resulting identity to the display exactly once.
type PairingService interface {
	// Connect registers a new display connection. A previous connection
	// bound to the same remote address is evicted first. Returns the
	// connection's pairing id and its first QR token.
	Connect(ctx context.Context, remoteAddr string) (pcID, token string, err error)
	// Rotate mints a fresh token for an already-connected display. Older
	// tokens are not revoked; they lapse on their own TTL.
	Rotate(ctx context.Context, pcID string) (token string, err error)
	// Redeem authenticates the scanning device and binds its identity to
	// the token, notifying the paired display on success.
	Redeem(ctx context.Context, req *dto.QRLoginRequest) error
	// Finalize consumes a redeemed token atomically. Concurrent calls with
	// the same token yield at most one winner.
	Finalize(ctx context.Context, token string) (*dto.QRClaim, error)
}

// tokenPending marks a minted token that no device has redeemed yet.
const tokenPending = "pending"

type pairingService struct {
	auth     AuthService
	cache    domain.Cache
	registry ws.Registry
	cfg      *config.Config
}

// NewPairingService creates a new instance of pairingService
func NewPairingService(auth AuthService, cacheClient domain.Cache, registry ws.Registry, cfg *config.Config) PairingService {
	return &pairingService{
		auth:     auth,
		cache:    cacheClient,
		registry: registry,
		cfg:      cfg,
	}
}

func (s *pairingService) Connect(ctx context.Context, remoteAddr string) (string, string, error) {
	addrKey := cache.ClientAddrKey(remoteAddr)

	// A reconnect from the same address supersedes the old pairing.
	if old, err := s.cache.Get(ctx, addrKey); err == nil && old != "" {
		s.registry.Remove(old)
		logger.Get().Debug("Evicted stale pairing",
			zap.String("remoteAddr", remoteAddr),
			zap.String("pcID", old))
	}

	pcID := util.NewULID()
	if err := s.cache.Set(ctx, addrKey, pcID, s.cfg.QRLogin.TokenTTL); err != nil {
		return "", "", domain.NewInternalError("Failed to register connection", err)
	}

	token, err := s.mintToken(ctx)
	if err != nil {
		return "", "", err
	}
	return pcID, token, nil
}

func (s *pairingService) Rotate(ctx context.Context, pcID string) (string, error) {
	token, err := s.mintToken(ctx)
	if err != nil {
		return "", err
	}
	logger.Get().Debug("QR token rotated", zap.String("pcID", pcID))
	return token, nil
}

func (s *pairingService) Redeem(ctx context.Context, req *dto.QRLoginRequest) error {
	user, err := s.auth.VerifyCredentials(ctx, req.Email, req.Password)
	if err != nil {
		return err
	}

	tokenKey := cache.QRTokenKey(req.Token)
	if _, err := s.cache.Get(ctx, tokenKey); err != nil {
		if errors.Is(err, domain.ErrCacheMiss) {
			// The display is still connected; tell it the scan came
			// too late so it can show a fresh code.
			_ = s.registry.Send(req.PcID, ws.Message{
				Type:    ws.MessageTypeError,
				Message: "Login Time Out",
			})
			return domain.NewTimeoutError("Login Time Out")
		}
		return domain.NewInternalError("Login failed", err)
	}

	claim := dto.QRClaim{
		UserID:      user.ID,
		UserName:    user.UserName,
		Appellation: user.Appellation,
		Role:        string(user.Role),
		PcID:        req.PcID,
	}
	payload, err := json.Marshal(claim)
	if err != nil {
		return domain.NewInternalError("Login failed", err)
	}
	if err := s.cache.Set(ctx, tokenKey, string(payload), s.cfg.QRLogin.TokenTTL); err != nil {
		return domain.NewInternalError("Login failed", err)
	}

	if err := s.registry.Send(req.PcID, ws.Message{
		Type:  ws.MessageTypeLogin,
		Token: req.Token,
	}); err != nil {
		logger.Get().Warn("Login notify failed",
			zap.String("pcID", req.PcID),
			zap.Error(err))
	}

	logger.Get().Info("QR token redeemed",
		zap.String("userID", user.ID),
		zap.String("pcID", req.PcID))
	return nil
}

func (s *pairingService) Finalize(ctx context.Context, token string) (*dto.QRClaim, error) {
	payload, err := s.cache.GetDel(ctx, cache.QRTokenKey(token))
	if err != nil {
		if errors.Is(err, domain.ErrCacheMiss) {
			return nil, domain.NewNotFoundError("Token not found")
		}
		return nil, domain.NewInternalError("Login failed", err)
	}

	var claim dto.QRClaim
	if err := json.Unmarshal([]byte(payload), &claim); err != nil || claim.UserID == "" {
		// Minted but never redeemed. The GetDel above already consumed
		// it, so a retry cannot succeed either.
		return nil, domain.NewNotFoundError("Token not found")
	}

	s.registry.Remove(claim.PcID)

	logger.Get().Info("QR login finalized",
		zap.String("userID", claim.UserID),
		zap.String("pcID", claim.PcID))
	return &claim, nil
}

func (s *pairingService) mintToken(ctx context.Context) (string, error) {
	token := util.NewULID()
	if err := s.cache.Set(ctx, cache.QRTokenKey(token), tokenPending, s.cfg.QRLogin.TokenTTL); err != nil {
		return "", domain.NewInternalError("Failed to issue token", err)
	}
	return token, nil
}
