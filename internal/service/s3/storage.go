// storage.go
package s3

import (
	"context"
	"io"
)

// Object — читаемый поток содержимого blob-объекта.
type Object interface {
	io.ReadCloser
	ContentLength() int64
	ContentType() string
}

type object struct {
	io.ReadCloser
	contentLength int64
	contentType   string
}

func (o *object) ContentLength() int64 {
	return o.contentLength
}

func (o *object) ContentType() string {
	return o.contentType
}

// Storage — контракт blob-хранилища: неизменяемые объекты под
// непрозрачными ключами. Put читает содержимое потоком, память
// ограничена размером чанка независимо от размера файла.
type Storage interface {
	Put(ctx context.Context, key, contentType string, body io.Reader) (int64, error)
	OpenReadStream(ctx context.Context, key string) (Object, error)
	Delete(ctx context.Context, key string) error
}
