package server

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"strconv"
	"time"

	"youbet/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 7 * 24 * time.Hour
)

var otpPhonePattern = regexp.MustCompile(`^\+?[0-9]{7,15}$`)

// SendOTP handles POST /api/auth/otp/send
func (s *Server) SendOTP(c *fiber.Ctx) error {
	var req struct {
		Phone string `json:"phone"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewInvalidRequestError("Invalid request body"))
	}
	if !otpPhonePattern.MatchString(req.Phone) {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewInvalidRequestError("Invalid phone number"))
	}
	if s.redis == nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(fmt.Errorf("otp store unavailable")))
	}

	code, err := generateOTP()
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	// Only the bcrypt hash touches Redis; the plaintext code goes out over SMS.
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	if err := s.redis.Set(c.Context(), "otp:"+req.Phone, string(hash), s.config.OTPTTL).Err(); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	body := fmt.Sprintf("Your YouBet verification code is %s", code)
	if err := s.smsGateway.SendText(c.Context(), req.Phone, body); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return c.JSON(fiber.Map{"message": "Verification code sent"})
}

// VerifyOTP handles POST /api/auth/otp/verify
func (s *Server) VerifyOTP(c *fiber.Ctx) error {
	var req struct {
		Phone string `json:"phone"`
		Code  string `json:"code"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewInvalidRequestError("Invalid request body"))
	}
	if !otpPhonePattern.MatchString(req.Phone) || req.Code == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewInvalidRequestError("Phone and code are required"))
	}
	if s.redis == nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(fmt.Errorf("otp store unavailable")))
	}

	hash, err := s.redis.Get(c.Context(), "otp:"+req.Phone).Result()
	if err != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid or expired code"))
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Code)); err != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid or expired code"))
	}
	// Single use.
	s.redis.Del(c.Context(), "otp:"+req.Phone)

	user, err := s.userRepo.GetByPhone(c.Context(), req.Phone)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	created := false
	if user == nil {
		user = &models.User{
			Phone:         req.Phone,
			Handle:        defaultHandle(),
			Name:          "New Bettor",
			PhoneVerified: true,
		}
		if err := s.userRepo.Create(c.Context(), user); err != nil {
			return models.RespondWithAppError(c, err)
		}
		created = true
	} else if !user.PhoneVerified {
		user.PhoneVerified = true
		if err := s.userRepo.Update(c.Context(), user); err != nil {
			return models.RespondWithAppError(c, err)
		}
	}

	access, refresh, err := s.issueTokens(c, user.ID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(fiber.Map{
		"accessToken":  access,
		"refreshToken": refresh,
		"user":         user,
	})
}

// Refresh handles POST /api/auth/refresh
func (s *Server) Refresh(c *fiber.Ctx) error {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := c.BodyParser(&req); err != nil || req.RefreshToken == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewInvalidRequestError("Refresh token is required"))
	}

	token, err := jwt.Parse(req.RefreshToken, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(s.config.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid or expired refresh token"))
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid token claims"))
	}
	if use, _ := claims["use"].(string); use != "refresh" {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid token type"))
	}
	sub, _ := claims["sub"].(string)
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid user ID in token"))
	}

	// A refresh token must match the one on record; rotation invalidates
	// older tokens.
	if s.redis != nil {
		stored, err := s.redis.Get(c.Context(), "refresh:"+sub).Result()
		if err != nil || stored != req.RefreshToken {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Refresh token has been revoked"))
		}
	}

	access, refresh, err := s.issueTokens(c, uint(userID))
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	return c.JSON(fiber.Map{
		"accessToken":  access,
		"refreshToken": refresh,
	})
}

// Logout handles POST /api/auth/logout
func (s *Server) Logout(c *fiber.Ctx) error {
	userID := currentUserID(c)

	if s.redis != nil {
		s.redis.Del(c.Context(), "refresh:"+strconv.FormatUint(uint64(userID), 10))

		// Blacklist the presented access token's JTI for its remaining life.
		if jti, exp, ok := s.tokenJTI(c); ok {
			ttl := time.Until(exp)
			if ttl > 0 {
				s.redis.Set(c.Context(), "blacklist:"+jti, "1", ttl)
			}
		}
	}

	return c.JSON(fiber.Map{"message": "Logged out"})
}

// issueTokens mints an access/refresh pair and stores the refresh token.
func (s *Server) issueTokens(c *fiber.Ctx, userID uint) (string, string, error) {
	access, err := s.generateToken(userID, "access", accessTokenTTL)
	if err != nil {
		return "", "", err
	}
	refresh, err := s.generateToken(userID, "refresh", refreshTokenTTL)
	if err != nil {
		return "", "", err
	}
	if s.redis != nil {
		key := "refresh:" + strconv.FormatUint(uint64(userID), 10)
		if err := s.redis.Set(c.Context(), key, refresh, refreshTokenTTL).Err(); err != nil {
			return "", "", err
		}
	}
	return access, refresh, nil
}

// generateToken creates a JWT for the given user ID.
func (s *Server) generateToken(userID uint, use string, ttl time.Duration) (string, error) {
	if s.config.JWTSecret == "" {
		return "", fmt.Errorf("JWT secret not configured")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10), // Subject (user ID as string)
		"use": use,                                    // Token type (access or refresh)
		"iss": "youbet-api",                           // Issuer
		"aud": "youbet-client",                        // Audience
		"exp": now.Add(ttl).Unix(),                    // Expiration
		"iat": now.Unix(),                             // Issued at
		"nbf": now.Unix(),                             // Not before
		"jti": s.generateJTI(),                        // JWT ID (unique identifier)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}

// generateJTI creates a unique JWT ID to prevent replay attacks
func (s *Server) generateJTI() string {
	return fmt.Sprintf("%d-%s", time.Now().Unix(), uuid.New().String()[:8])
}

// tokenJTI extracts the jti and expiry from the presented bearer token.
func (s *Server) tokenJTI(c *fiber.Ctx) (string, time.Time, bool) {
	authHeader := c.Get("Authorization")
	const prefix = "Bearer "
	if len(authHeader) <= len(prefix) {
		return "", time.Time{}, false
	}
	token, err := jwt.Parse(authHeader[len(prefix):], func(token *jwt.Token) (any, error) {
		return []byte(s.config.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return "", time.Time{}, false
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", time.Time{}, false
	}
	jti, _ := claims["jti"].(string)
	expFloat, _ := claims["exp"].(float64)
	if jti == "" || expFloat == 0 {
		return "", time.Time{}, false
	}
	return jti, time.Unix(int64(expFloat), 0), true
}

// generateOTP returns a random 6-digit code.
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// defaultHandle derives a unique-enough starter handle for a new account.
func defaultHandle() string {
	return "bettor-" + uuid.New().String()[:8]
}
