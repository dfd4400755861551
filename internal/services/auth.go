package services

import (
  "context"
  "errors"
  "fmt"
  "strings"
  "time"

  "github.com/golang-jwt/jwt/v5"
  "github.com/google/uuid"
  "golang.org/x/crypto/bcrypt"
  "gorm.io/gorm"

  "github.com/yungbote/studymatch-backend/internal/apierr"
  "github.com/yungbote/studymatch-backend/internal/logger"
  "github.com/yungbote/studymatch-backend/internal/repos"
  "github.com/yungbote/studymatch-backend/internal/requestdata"
  "github.com/yungbote/studymatch-backend/internal/types"
)

type JWTClaims struct {
  jwt.RegisteredClaims
}

type AuthService interface {
  RegisterUser(ctx context.Context, user *types.User) (string, error)
  LoginUser(ctx context.Context, email, password string) (string, *types.User, error)
  SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
  GetAccessTTL() time.Duration
}

type authService struct {
  db           *gorm.DB
  log          *logger.Logger
  userRepo     repos.UserRepo
  jwtSecretKey string
  accessTTL    time.Duration
}

func NewAuthService(
  db *gorm.DB,
  log *logger.Logger,
  userRepo repos.UserRepo,
  jwtSecretKey string,
  accessTTL time.Duration,
) AuthService {
  serviceLog := log.With("service", "AuthService")
  return &authService{
    db:           db,
    log:          serviceLog,
    userRepo:     userRepo,
    jwtSecretKey: jwtSecretKey,
    accessTTL:    accessTTL,
  }
}

func (as *authService) RegisterUser(ctx context.Context, user *types.User) (string, error) {
  normalizeUserFields(user)
  if vErr := validateRegistration(user); vErr != nil {
    return "", vErr
  }
  emailExists, err := as.userRepo.EmailExists(ctx, nil, user.Email)
  if err != nil {
    return "", fmt.Errorf("Failed to check user email: %w", err)
  }
  if emailExists {
    return "", apierr.Conflict(apierr.CodeEmailExists, errors.New("email is already in use"))
  }
  hashed, hErr := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
  if hErr != nil {
    return "", fmt.Errorf("Failed to hash password: %w", hErr)
  }
  user.Password = string(hashed)
  user.ID = uuid.New()
  if user.Role == "" {
    user.Role = types.UserRoleUser
  }
  if _, cErr := as.userRepo.Create(ctx, nil, []*types.User{user}); cErr != nil {
    return "", fmt.Errorf("Failed to create user: %w", cErr)
  }
  return as.generateAccessToken(user)
}

func (as *authService) LoginUser(ctx context.Context, email, password string) (string, *types.User, error) {
  email = strings.ToLower(strings.TrimSpace(email))
  if email == "" || password == "" {
    return "", nil, apierr.BadRequest(apierr.CodeBadInput, errors.New("email and password are required"))
  }
  user, err := as.userRepo.GetByEmail(ctx, nil, email)
  if err != nil {
    return "", nil, fmt.Errorf("Error retrieving user by email: %w", err)
  }
  if user == nil || user.Deleted {
    return "", nil, apierr.Unauthorized(apierr.CodeBadCredentials, errors.New("invalid email or password"))
  }
  if cErr := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); cErr != nil {
    return "", nil, apierr.Unauthorized(apierr.CodeBadCredentials, errors.New("invalid email or password"))
  }
  token, gErr := as.generateAccessToken(user)
  if gErr != nil {
    return "", nil, fmt.Errorf("Generate access token error: %w", gErr)
  }
  return token, user, nil
}

func (as *authService) generateAccessToken(user *types.User) (string, error) {
  claims := JWTClaims{
    RegisteredClaims: jwt.RegisteredClaims{
      Subject:   user.ID.String(),
      ExpiresAt: jwt.NewNumericDate(time.Now().Add(as.accessTTL)),
      IssuedAt:  jwt.NewNumericDate(time.Now()),
    },
  }
  token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
  return token.SignedString([]byte(as.jwtSecretKey))
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
  if tokenString == "" {
    return ctx, nil
  }
  parsedToken, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
    return []byte(as.jwtSecretKey), nil
  })
  if err != nil {
    return ctx, fmt.Errorf("Failed to parse token: %w", err)
  }
  claims, ok := parsedToken.Claims.(*JWTClaims)
  if !ok || !parsedToken.Valid {
    return ctx, errors.New("Invalid or expired JWT token")
  }
  userID, err := uuid.Parse(claims.Subject)
  if err != nil {
    return ctx, fmt.Errorf("Invalid user id in token: %w", err)
  }
  rd := &requestdata.RequestData{
    TokenString: tokenString,
    UserID:      userID,
  }
  return requestdata.WithRequestData(ctx, rd), nil
}

func (as *authService) GetAccessTTL() time.Duration {
  return as.accessTTL
}

func normalizeUserFields(user *types.User) {
  user.Email = strings.ToLower(strings.TrimSpace(user.Email))
  user.Username = strings.TrimSpace(user.Username)
  user.DisplayName = strings.TrimSpace(user.DisplayName)
}

func validateRegistration(user *types.User) error {
  if user.Email == "" {
    return apierr.BadRequest(apierr.CodeBadInput, errors.New("an email is required to register"))
  }
  if user.Password == "" {
    return apierr.BadRequest(apierr.CodeBadInput, errors.New("a password is required to register"))
  }
  if user.Username == "" {
    return apierr.BadRequest(apierr.CodeBadInput, errors.New("a username is required to register"))
  }
  if user.DisplayName == "" {
    user.DisplayName = user.Username
  }
  return nil
}
