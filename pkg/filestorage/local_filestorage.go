// pkg/filestorage/local_filestorage.go

package filestorage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PublicPrefix - URL-префикс, под которым echo раздает каталог загрузок.
const PublicPrefix = "/uploads/"

type FileStorageInterface interface {
	Save(file io.Reader, ext string, prefix string) (filePath string, err error)
	Delete(filePath string) error
}

type LocalFileStorage struct {
	basePath string
	now      func() time.Time
}

func NewLocalFileStorage(basePath string) (FileStorageInterface, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("не удалось создать директорию: %w", err)
	}
	return &LocalFileStorage{basePath: basePath, now: time.Now}, nil
}

// Save кладет файл в <base>/<prefix>/YYYY/MM/DD/ и возвращает публичный путь "/uploads/...".
// ext задает вызывающий по проверенному типу содержимого; имя от клиента сюда не попадает.
func (s *LocalFileStorage) Save(file io.Reader, ext string, prefix string) (string, error) {
	now := s.now()
	ext = strings.ToLower(ext)
	if ext != "" && (!strings.HasPrefix(ext, ".") || strings.ContainsAny(ext[1:], `./\`)) {
		return "", fmt.Errorf("недопустимое расширение файла: %s", ext)
	}
	uniqueFileName := fmt.Sprintf("%s-%s%s", now.Format("2006-01-02"), uuid.New().String(), ext)

	datePath := now.Format("2006/01/02")
	fullDirPath := filepath.Join(s.basePath, prefix, datePath)

	if err := os.MkdirAll(fullDirPath, 0o755); err != nil {
		return "", err
	}

	dst, err := os.Create(filepath.Join(fullDirPath, uniqueFileName))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err = io.Copy(dst, file); err != nil {
		return "", err
	}

	return PublicPrefix + filepath.ToSlash(filepath.Join(prefix, datePath, uniqueFileName)), nil
}

// Delete принимает публичный путь. Отсутствующий файл не считается ошибкой.
func (s *LocalFileStorage) Delete(fileURL string) error {
	relativePath := filepath.Clean(strings.TrimPrefix(fileURL, PublicPrefix))
	if strings.HasPrefix(relativePath, "..") || filepath.IsAbs(relativePath) {
		return fmt.Errorf("недопустимый путь к файлу: %s", fileURL)
	}

	fullPath := filepath.Join(s.basePath, relativePath)
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
