// Package main — Repository katmanı başlatma.
//
// initRepositories, tüm repository implementasyonlarını oluşturur.
// Her repository aynı *sql.DB'yi alır ve interface döner.
package main

import (
	"database/sql"

	"github.com/akinalp/mygames/repository"
)

// Repositories, tüm repository instance'larını tutan container struct.
type Repositories struct {
	User          repository.UserRepository
	RefreshToken  repository.RefreshTokenRepository
	ClientStorage repository.ClientStorageRepository
}

// initRepositories, veritabanı bağlantısından tüm repository'leri oluşturur.
//
// Go'nun sql.DB'si thread-safe connection pool'dur, paylaşılması güvenlidir.
func initRepositories(conn *sql.DB) *Repositories {
	return &Repositories{
		User:          repository.NewSQLiteUserRepo(conn),
		RefreshToken:  repository.NewSQLiteRefreshTokenRepo(conn),
		ClientStorage: repository.NewSQLiteClientStorageRepo(conn),
	}
}
