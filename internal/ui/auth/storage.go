package auth

import (
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
)

// MemoryStorage: хранилище в памяти.
type MemoryStorage struct {
	values map[string]string
}

// NewMemoryStorage создаёт пустое хранилище.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: map[string]string{}}
}

func (s *MemoryStorage) Get(key string) (string, bool) {
	v, ok := s.values[key]
	return v, ok
}

func (s *MemoryStorage) Set(key, value string) error {
	s.values[key] = value
	return nil
}

func (s *MemoryStorage) Remove(keys ...string) error {
	for _, k := range keys {
		delete(s.values, k)
	}
	return nil
}

// CookieOptions: атрибуты cookie сессии.
type CookieOptions struct {
	// MaxAge: время жизни cookie token и userType
	MaxAge time.Duration
	// Secure: атрибут Secure
	Secure bool
}

// DefaultCookieMaxAge: время жизни cookie token (7 дней).
const DefaultCookieMaxAge = 7 * 24 * time.Hour

// CookieStorage: хранилище сессии в cookie одного HTTP-запроса.
// token и adminToken хранятся открыто (их читает route guard),
// userType подписывается securecookie. Записи видны последующим Get
// в том же запросе.
type CookieStorage struct {
	r       *http.Request
	w       http.ResponseWriter
	codec   *securecookie.SecureCookie
	opts    CookieOptions
	written map[string]*string
}

// NewCookieStorage создаёт хранилище поверх запроса и ответа.
func NewCookieStorage(w http.ResponseWriter, r *http.Request, codec *securecookie.SecureCookie, opts CookieOptions) *CookieStorage {
	if opts.MaxAge <= 0 {
		opts.MaxAge = DefaultCookieMaxAge
	}
	return &CookieStorage{r: r, w: w, codec: codec, opts: opts, written: map[string]*string{}}
}

func (s *CookieStorage) Get(key string) (string, bool) {
	if v, ok := s.written[key]; ok {
		if v == nil {
			return "", false
		}
		return *v, true
	}
	c, err := s.r.Cookie(key)
	if err != nil {
		return "", false
	}
	if key != KeyUserType {
		return c.Value, true
	}
	var v string
	if err := s.codec.Decode(key, c.Value, &v); err != nil {
		return "", false
	}
	return v, true
}

func (s *CookieStorage) Set(key, value string) error {
	cookieValue := value
	if key == KeyUserType {
		encoded, err := s.codec.Encode(key, value)
		if err != nil {
			return err
		}
		cookieValue = encoded
	}
	http.SetCookie(s.w, &http.Cookie{
		Name:     key,
		Value:    cookieValue,
		Path:     "/",
		MaxAge:   int(s.opts.MaxAge / time.Second),
		HttpOnly: true,
		Secure:   s.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	s.written[key] = &value
	return nil
}

// Remove истекает cookie: Expires в 1970 году и Max-Age < 0.
func (s *CookieStorage) Remove(keys ...string) error {
	for _, key := range keys {
		http.SetCookie(s.w, ExpiredCookie(key, s.opts.Secure))
		s.written[key] = nil
	}
	return nil
}

// ExpiredCookie: cookie с истёкшим сроком для удаления у клиента.
func ExpiredCookie(name string, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0).UTC(),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// NewCodec создаёт подписывающий кодек cookie.
// Пустой secret: случайный ключ (cookie не переживают рестарт).
func NewCodec(secret string) *securecookie.SecureCookie {
	key := []byte(secret)
	if secret == "" {
		key = securecookie.GenerateRandomKey(32)
	}
	return securecookie.New(key, nil)
}
