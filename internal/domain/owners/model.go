package owners

import "time"

// Owner es una parte con equity sobre animales. Puede o no estar vinculado
// a un usuario de la plataforma.
type Owner struct {
	ID   string
	Name string

	// UserID vincula al usuario de plataforma, si existe.
	UserID *string

	CreatedAt time.Time
	UpdatedAt time.Time
}
