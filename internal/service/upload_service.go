package service

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/hostdesk/internal/config"
	"github.com/hostdesk/internal/storage"
)

const (
	defaultAttachmentMaxSize = 10 << 20
	contentSniffLength       = 512
	attachmentNameMaxRunes   = 255
)

var defaultAttachmentTypes = []string{
	"image/png",
	"image/jpeg",
	"image/gif",
	"application/pdf",
	"text/plain; charset=utf-8",
	"application/zip",
}

var defaultAttachmentExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".pdf", ".txt", ".log", ".zip"}

// StoredAttachment 已加密落盘的附件信息
type StoredAttachment struct {
	OriginalName string
	ContentType  string
	Size         int64
	StorageKey   string
	Checksum     string
}

// UploadService 工单附件上传服务（校验 → 加密 → 落盘）
type UploadService struct {
	cfg   config.UploadConfig
	store *storage.Store
}

// NewUploadService 创建附件上传服务；store 为 nil 时附件功能不可用
func NewUploadService(cfg config.UploadConfig, store *storage.Store) *UploadService {
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = defaultAttachmentMaxSize
	}
	if len(cfg.AllowedTypes) == 0 {
		cfg.AllowedTypes = defaultAttachmentTypes
	}
	if len(cfg.AllowedExtensions) == 0 {
		cfg.AllowedExtensions = defaultAttachmentExtensions
	}
	return &UploadService{cfg: cfg, store: store}
}

// Enabled 附件存储是否可用
func (s *UploadService) Enabled() bool {
	return s != nil && s.store != nil
}

// SaveAttachment 校验并加密保存附件
func (s *UploadService) SaveAttachment(filename string, src io.Reader) (*StoredAttachment, error) {
	if !s.Enabled() {
		return nil, ErrAttachmentStoreDisabled
	}
	name := filepath.Base(strings.TrimSpace(filename))
	if name == "." || name == "/" || name == "" {
		return nil, fmt.Errorf("%w: filename", ErrInvalidInput)
	}
	name = tailRunes(name, attachmentNameMaxRunes)
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" || !isAllowedExtension(ext, s.cfg.AllowedExtensions) {
		return nil, fmt.Errorf("%w: extension %s", ErrAttachmentTypeInvalid, ext)
	}

	// 多读 1 字节用于判断超限
	data, err := io.ReadAll(io.LimitReader(src, s.cfg.MaxSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrAttachmentEmpty
	}
	if int64(len(data)) > s.cfg.MaxSize {
		return nil, fmt.Errorf("%w: max %d bytes", ErrAttachmentTooLarge, s.cfg.MaxSize)
	}

	head := data
	if len(head) > contentSniffLength {
		head = head[:contentSniffLength]
	}
	contentType := http.DetectContentType(head)
	if !isAllowedContentType(contentType, s.cfg.AllowedTypes) {
		return nil, fmt.Errorf("%w: %s", ErrAttachmentTypeInvalid, contentType)
	}

	sum := sha256.Sum256(data)
	key, err := s.store.Put(data, time.Now())
	if err != nil {
		return nil, err
	}
	return &StoredAttachment{
		OriginalName: name,
		ContentType:  contentType,
		Size:         int64(len(data)),
		StorageKey:   key,
		Checksum:     hex.EncodeToString(sum[:]),
	}, nil
}

// ReadAttachment 解密读取附件并校验 sha256
func (s *UploadService) ReadAttachment(key, checksum string) ([]byte, error) {
	if !s.Enabled() {
		return nil, ErrAttachmentStoreDisabled
	}
	data, err := s.store.Get(key)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrAttachmentCorrupted, err)
	}
	sum := sha256.Sum256(data)
	if hex.EncodeToString(sum[:]) != strings.ToLower(strings.TrimSpace(checksum)) {
		return nil, ErrAttachmentCorrupted
	}
	return data, nil
}

// RemoveAttachment 删除落盘文件（用于事务失败回滚）
func (s *UploadService) RemoveAttachment(key string) error {
	if !s.Enabled() {
		return nil
	}
	return s.store.Delete(key)
}

// tailRunes 保留末尾 limit 个字符，扩展名不被截掉
func tailRunes(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[len(runes)-limit:])
}

func isAllowedContentType(contentType string, allowed []string) bool {
	base := strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])
	for _, t := range allowed {
		t = strings.TrimSpace(t)
		if strings.EqualFold(contentType, t) || strings.EqualFold(base, strings.SplitN(t, ";", 2)[0]) {
			return true
		}
	}
	return false
}

func isAllowedExtension(ext string, allowed []string) bool {
	for _, allowedExt := range allowed {
		normalized := strings.ToLower(strings.TrimSpace(allowedExt))
		if normalized == "" {
			continue
		}
		if !strings.HasPrefix(normalized, ".") {
			normalized = "." + normalized
		}
		if strings.EqualFold(ext, normalized) {
			return true
		}
	}
	return false
}
