package mocks

//go:generate mockery --name ProcessedEventStore --srcpkg github.com/aevon-lab/event-worker/internal/core/storage --output ./storage --outpkg storagemocks --with-expecter
