package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/hostdesk/internal/security"

	"github.com/oklog/ulid/v2"
)

// ErrKeyInvalid 存储键格式不合法
var ErrKeyInvalid = errors.New("storage key invalid")

// ErrObjectNotFound 对象不存在
var ErrObjectNotFound = errors.New("storage object not found")

var keyPattern = regexp.MustCompile(`^[0-9]{4}/[0-9]{2}/[0-9A-HJKMNP-TV-Z]{26}\.bin$`)

// Store 加密落盘的本地对象存储，键格式 <yyyy>/<mm>/<ulid>.bin
type Store struct {
	dir    string
	cipher *security.Cipher
}

// NewStore 创建存储并确保根目录存在
func NewStore(dir string, cipher *security.Cipher) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("storage dir is empty")
	}
	if cipher == nil {
		return nil, fmt.Errorf("storage cipher is nil")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, err
	}
	return &Store{dir: dir, cipher: cipher}, nil
}

// Put 加密写入，返回存储键
func (s *Store) Put(plaintext []byte, now time.Time) (string, error) {
	sealed, err := s.cipher.Seal(plaintext)
	if err != nil {
		return "", err
	}
	id := ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy())
	key := fmt.Sprintf("%s/%s/%s.bin", now.Format("2006"), now.Format("01"), id.String())
	path := s.pathOf(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return "", err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, sealed, 0o640); err != nil {
		return "", err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", err
	}
	return key, nil
}

// Get 读取并解密
func (s *Store) Get(key string) ([]byte, error) {
	if !keyPattern.MatchString(key) {
		return nil, ErrKeyInvalid
	}
	data, err := os.ReadFile(s.pathOf(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrObjectNotFound
		}
		return nil, err
	}
	return s.cipher.Open(data)
}

// Delete 删除对象，不存在时忽略
func (s *Store) Delete(key string) error {
	if !keyPattern.MatchString(key) {
		return ErrKeyInvalid
	}
	if err := os.Remove(s.pathOf(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (s *Store) pathOf(key string) string {
	return filepath.Join(s.dir, filepath.FromSlash(key))
}
