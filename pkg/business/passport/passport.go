package passport

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// 中国大陆手机号。原型只服务大陆号段，与验证码短信通道一致。
var phonePattern = regexp.MustCompile(`^1[3-9]\d{9}$`)

// User 是持久层中的用户。
type User struct {
	ID       int64
	NickName string
	Icon     string
}

// Session 是一次已登录的会话视图。
type Session struct {
	UserID   int64
	NickName string
	Icon     string
}

// UserStore 是登录依赖的用户持久层契约。
type UserStore interface {
	// UserByPhone 按手机号查询用户，不存在时返回 (nil, nil)。
	UserByPhone(ctx context.Context, phone string) (*User, error)

	// CreateUser 以手机号注册新用户。
	CreateUser(ctx context.Context, phone string) (*User, error)
}

// Service 提供验证码登录与会话管理。
type Service struct {
	client redis.UniversalClient
	store  UserStore
	opts   *Options
}

// NewService 创建登录服务。
func NewService(client redis.UniversalClient, store UserStore, opts ...Option) (*Service, error) {
	if client == nil {
		return nil, ErrNilClient
	}
	if store == nil {
		return nil, ErrNilStore
	}

	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}
	return &Service{
		client: client,
		store:  store,
		opts:   options,
	}, nil
}

// SendCode 生成并存储登录验证码，返回验证码本身。
// 短信通道不在此层，调用方负责投递。
func (s *Service) SendCode(ctx context.Context, phone string) (string, error) {
	if !phonePattern.MatchString(phone) {
		return "", ErrInvalidPhone
	}

	code := s.opts.CodeFunc()
	if err := s.client.Set(ctx, s.opts.CodeKeyPrefix+phone, code, s.opts.CodeTTL).Err(); err != nil {
		return "", fmt.Errorf("passport: store code for %s: %w", phone, err)
	}
	s.logInfo("passport: verification code issued", "phone", phone)
	return code, nil
}

// Login 校验验证码并建立登录态，返回会话 token。
// 手机号未注册时自动注册。验证码一经使用即作废。
func (s *Service) Login(ctx context.Context, phone, code string) (string, error) {
	if !phonePattern.MatchString(phone) {
		return "", ErrInvalidPhone
	}

	codeKey := s.opts.CodeKeyPrefix + phone
	cached, err := s.client.Get(ctx, codeKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrBadCode
		}
		return "", fmt.Errorf("passport: read code for %s: %w", phone, err)
	}
	if code == "" || cached != code {
		return "", ErrBadCode
	}

	user, err := s.store.UserByPhone(ctx, phone)
	if err != nil {
		return "", fmt.Errorf("passport: query user by phone: %w", err)
	}
	if user == nil {
		user, err = s.store.CreateUser(ctx, phone)
		if err != nil {
			return "", fmt.Errorf("passport: create user: %w", err)
		}
	}

	token := s.opts.TokenFunc()
	tokenKey := s.opts.TokenKeyPrefix + token
	fields := map[string]any{
		"id":       strconv.FormatInt(user.ID, 10),
		"nickName": user.NickName,
		"icon":     user.Icon,
	}
	if err := s.client.HSet(ctx, tokenKey, fields).Err(); err != nil {
		return "", fmt.Errorf("passport: store session: %w", err)
	}
	if err := s.client.Expire(ctx, tokenKey, s.opts.SessionTTL).Err(); err != nil {
		return "", fmt.Errorf("passport: expire session: %w", err)
	}

	// 验证码一次性使用，删除失败不影响登录结果
	if err := s.client.Del(ctx, codeKey).Err(); err != nil {
		s.logWarn("passport: delete used code failed", "phone", phone, "error", err)
	}

	s.logInfo("passport: login succeeded", "userId", user.ID)
	return token, nil
}

// Session 校验 token 并返回会话，同时刷新滑动过期时间。
func (s *Service) Session(ctx context.Context, token string) (Session, error) {
	if token == "" {
		return Session{}, ErrNoSession
	}

	tokenKey := s.opts.TokenKeyPrefix + token
	fields, err := s.client.HGetAll(ctx, tokenKey).Result()
	if err != nil {
		return Session{}, fmt.Errorf("passport: read session: %w", err)
	}
	if len(fields) == 0 {
		return Session{}, ErrNoSession
	}

	userID, err := strconv.ParseInt(fields["id"], 10, 64)
	if err != nil {
		return Session{}, fmt.Errorf("passport: corrupt session %q: %w", token, err)
	}

	// 滑动过期：每次有效访问都续期
	if err := s.client.Expire(ctx, tokenKey, s.opts.SessionTTL).Err(); err != nil {
		s.logWarn("passport: refresh session ttl failed", "error", err)
	}

	return Session{
		UserID:   userID,
		NickName: fields["nickName"],
		Icon:     fields["icon"],
	}, nil
}

// Logout 删除登录态。token 不存在时静默成功。
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.client.Del(ctx, s.opts.TokenKeyPrefix+token).Err(); err != nil {
		return fmt.Errorf("passport: delete session: %w", err)
	}
	return nil
}

// randomCode 生成数字验证码。
func randomCode() string {
	var b strings.Builder
	for i := 0; i < DefaultCodeLength; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			// crypto/rand 不可用属于环境级故障
			panic(fmt.Sprintf("passport: random source unavailable: %v", err))
		}
		b.WriteByte(byte('0' + n.Int64()))
	}
	return b.String()
}

// randomToken 生成去连字符的 uuid token。
func randomToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func (s *Service) logInfo(msg string, args ...any) {
	if s.opts.Logger != nil {
		s.opts.Logger.Info(msg, args...)
	}
}

func (s *Service) logWarn(msg string, args ...any) {
	if s.opts.Logger != nil {
		s.opts.Logger.Warn(msg, args...)
	}
}
