package service

var (
	MapError           = mapError
	MapRepositoryError = mapRepositoryError
)
