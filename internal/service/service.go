package service

import "github.com/fjod/game-hardware-store/internal/repository"

// Store is the persistence surface shared by the services.
type Store interface {
	repository.Transactor
	Repos() repository.Repos
}
