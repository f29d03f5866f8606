// Package pkg, projede paylaşılan utility'leri barındırır.
// Bu dosya domain-level error tanımlarını içerir.
//
// errors.New() ile sabit error değişkenleri tanımlarız.
// Böylece error karşılaştırması string yerine referans ile yapılır:
//
//	if errors.Is(err, pkg.ErrNotFound) { ... }
package pkg

import (
	"errors"
	"fmt"
)

// Domain-level error'lar.
// Handler katmanı bu error'ları HTTP status code'larına map'ler.
// Service katmanı bunları döner, handler yakalar.
var (
	ErrNotFound      = errors.New("not found")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrAlreadyExists = errors.New("already exists")
	ErrBadRequest    = errors.New("bad request")

	// ErrConflict, optimistic concurrency kaybını belirtir: satır okunduktan sonra
	// başka bir istek tarafından değiştirilmiş (CAS update 0 satır etkiledi).
	ErrConflict = errors.New("conflict")

	// ErrTokenReuse, daha önce rotate edilmiş bir refresh token'ın tekrar sunulmasıdır.
	// ErrUnauthorized'ı da sarar: handler 401 döner, ama çağıran taraf
	// errors.Is(err, pkg.ErrTokenReuse) ile bu özel durumu ayırt edebilir.
	ErrTokenReuse = fmt.Errorf("%w: token reuse detected", ErrUnauthorized)
)
