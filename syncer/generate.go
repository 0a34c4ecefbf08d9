package syncer

//go:generate go run go.uber.org/mock/mockgen@v0.2.0 -destination=./mocks/mock_syncer.go -package=syncermocks -source=syncer.go ProjectSource PolicyStore
