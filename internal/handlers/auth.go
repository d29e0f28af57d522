package handlers

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sumo-yosou/predict-api/internal/models"
)

type contextKey string

const identityKey contextKey = "identity"

// hashToken creates a SHA256 digest so token comparison runs over fixed-length input
func hashToken(token string) []byte {
	sum := sha256.Sum256([]byte(token))
	return sum[:]
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if len(auth) > 7 && strings.EqualFold(auth[:7], "Bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}

// parseSubject verifies an HS256 token and returns its subject claim.
func parseSubject(tokenString string, secret []byte) (string, error) {
	claims := &jwt.RegisteredClaims{}
	tok, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}
	if !tok.Valid {
		return "", errors.New("invalid token")
	}
	if claims.Subject == "" {
		return "", errors.New("token has no subject")
	}
	return claims.Subject, nil
}

// AuthMiddleware validates user JWTs and stores the caller's identity on the context
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			h.errorResponse(w, http.StatusUnauthorized, "Missing bearer token")
			return
		}

		userID, err := parseSubject(token, h.jwtSecret)
		if err != nil {
			h.logger.Debugw("Rejected token", "error", err)
			h.errorResponse(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), identityKey, models.Identity{UserID: userID})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// IngestAuthMiddleware validates the shared ingestion token
func (h *Handler) IngestAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get("X-Ingest-Token")
		if token == "" {
			token = bearerToken(r)
		}

		if token == "" {
			h.errorResponse(w, http.StatusUnauthorized, "Missing ingest token")
			return
		}
		if h.ingestToken == "" || subtle.ConstantTimeCompare(hashToken(token), hashToken(h.ingestToken)) != 1 {
			h.logger.Warnw("Invalid ingest token", "remote", r.RemoteAddr)
			h.errorResponse(w, http.StatusUnauthorized, "Invalid ingest token")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// identityFrom extracts the authenticated caller from the request context
func identityFrom(ctx context.Context) models.Identity {
	id, _ := ctx.Value(identityKey).(models.Identity)
	return id
}
