package repositories

import (
	"context"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Repositories bundles the repositories bound to one unit of work.
type Repositories struct {
	Users    UserRepository
	Messages MessageRepository
	Follows  FollowRepository
	Likes    LikeRepository
}

// UnitOfWork runs fn inside a single transaction. fn's error rolls the
// transaction back and is returned unchanged.
type UnitOfWork interface {
	Do(ctx context.Context, reason string, fn func(repos Repositories) error) error
}

// NewGORMRepositories binds every GORM repository to db, which may be a transaction.
func NewGORMRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Users:    NewGORMUserRepository(db),
		Messages: NewGORMMessageRepository(db),
		Follows:  NewGORMFollowRepository(db),
		Likes:    NewGORMLikeRepository(db),
	}
}

// GORMUnitOfWork is a UnitOfWork backed by GORM transactions.
type GORMUnitOfWork struct {
	db  *gorm.DB
	log *logrus.Entry
}

// NewGORMUnitOfWork creates a new instance of GORMUnitOfWork.
func NewGORMUnitOfWork(db *gorm.DB, log *logrus.Entry) *GORMUnitOfWork {
	return &GORMUnitOfWork{db: db, log: log}
}

func (u *GORMUnitOfWork) Do(ctx context.Context, reason string, fn func(repos Repositories) error) error {
	entry := u.log.WithField("tx", reason)
	entry.Debug("starting transaction")

	err := u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewGORMRepositories(tx))
	})
	if err != nil {
		entry.WithError(err).Debug("transaction rolled back")
		return err
	}

	entry.Debug("committed transaction")
	return nil
}

var _ UnitOfWork = (*GORMUnitOfWork)(nil)
