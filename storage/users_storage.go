package storage

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/quillblog/quill/storage/model"
)

// UsersStorage returns the credential store
func (s *Storage) UsersStorage() *UsersStorage {
	return &UsersStorage{db: s.db, params: s.userParams}
}

// UsersStorage implements model.UsersStore using GORM. Passwords are stored as
// argon2id hashes and never leave this type.
type UsersStorage struct {
	db     *gorm.DB
	params Argon2idParams
}

func byUsername(username string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("username = ?", username)
	}
}

// withoutHash never selects the password hash column
func withoutHash(db *gorm.DB) *gorm.DB {
	return db.Omit("password_hash")
}

// Count returns the number of users present in the store
func (s *UsersStorage) Count() (int64, error) {
	var count int64
	err := s.db.Model(&model.User{}).Count(&count).Error
	return count, errors.WithStack(err)
}

// List returns all users ordered by id
func (s *UsersStorage) List() ([]model.User, error) {
	users := []model.User{}
	if err := s.db.Scopes(withoutHash).Order("id").Find(&users).Error; err != nil {
		return nil, errors.WithStack(err)
	}
	return users, nil
}

// Get returns a user by username
func (s *UsersStorage) Get(username string) (*model.User, error) {
	var u model.User
	if err := s.db.Scopes(withoutHash, byUsername(username)).Take(&u).Error; err != nil {
		return nil, notFoundOr(err, model.NotFoundErrorFmt("user not found: %s", username))
	}
	return &u, nil
}

// GetByID returns a user by id
func (s *UsersStorage) GetByID(id uint) (*model.User, error) {
	var u model.User
	if err := s.db.Scopes(withoutHash).Take(&u, id).Error; err != nil {
		return nil, notFoundOr(err, model.NotFoundErrorFmt("user not found: %d", id))
	}
	return &u, nil
}

// Exists reports whether the username is taken
func (s *UsersStorage) Exists(username string) (bool, error) {
	var count int64
	err := s.db.Model(&model.User{}).Scopes(byUsername(username)).Limit(1).Count(&count).Error
	return count > 0, errors.WithStack(err)
}

// Create stores a new user. The unique index on username decides between
// concurrent registrations of the same name.
func (s *UsersStorage) Create(username, password string, admin bool) (*model.User, error) {
	if username == "" || password == "" {
		return nil, model.ValidationError("username and password are required")
	}
	taken := model.AlreadyExistsErrorFmt("username already in use: %s", username)
	if exists, err := s.Exists(username); err != nil {
		return nil, err
	} else if exists {
		return nil, taken
	}
	hash, err := newPHCHash(password, s.params)
	if err != nil {
		return nil, err
	}
	u := model.User{
		Username:     username,
		PasswordHash: hash.String(),
		Admin:        admin,
	}
	if err = s.db.Create(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, taken
		}
		return nil, errors.WithStack(err)
	}
	u.PasswordHash = ""
	return &u, nil
}

// Delete removes a user by username. Comments keep their username snapshot.
func (s *UsersStorage) Delete(username string) error {
	res := s.db.Scopes(byUsername(username)).Delete(&model.User{})
	if res.Error != nil {
		return errors.WithStack(res.Error)
	}
	if res.RowsAffected == 0 {
		return model.NotFoundErrorFmt("user not found: %s", username)
	}
	return nil
}

// Authenticate checks the password of username. Hashes created with other
// argon2id parameters than the configured ones are replaced on success.
func (s *UsersStorage) Authenticate(username, password string) (*model.User, error) {
	var u model.User
	if err := s.db.Scopes(byUsername(username)).Take(&u).Error; err != nil {
		return nil, notFoundOr(err, model.NotFoundErrorFmt("user not found: %s", username))
	}
	hash, err := parsePHCHash(u.PasswordHash)
	if err != nil {
		return nil, errors.WithMessagef(err, "stored password of %s is unusable", username)
	}
	if !hash.matches(password) {
		return nil, model.UnauthorizedError("invalid credentials")
	}
	if hash.outdated(s.params) {
		s.rehash(u.ID, password)
	}
	u.PasswordHash = ""
	return &u, nil
}

func (s *UsersStorage) rehash(id uint, password string) {
	hash, err := newPHCHash(password, s.params)
	if err == nil {
		err = s.db.Model(&model.User{}).Where("id = ?", id).Update("password_hash", hash.String()).Error
	}
	if err != nil {
		log.WithError(err).WithField("user", id).Warn("could not upgrade password hash")
	}
}
