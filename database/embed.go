package database

import (
	"embed"
	"io/fs"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// Migrations, binary'ye gömülü migration dosyalarını döner.
// Kök dizin "migrations/" alt dizinidir, goose doğrudan "." ile okur.
func Migrations() fs.FS {
	sub, err := fs.Sub(embeddedMigrations, "migrations")
	if err != nil {
		// embed pattern derleme zamanında doğrulandığı için buraya düşülmez
		panic(err)
	}
	return sub
}
