package database

import (
	"errors"
	"fmt"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"git.sr.ht/~jakintosh/cookieauth/internal/service"
	"git.sr.ht/~jakintosh/cookieauth/pkg/identity"
)

func (s *SQLiteStore) IdentityStore() service.IdentityStore {
	return s
}

func (s *SQLiteStore) InsertIdentity(
	account service.Account,
) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("couldn't begin identity insert: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO identity (id, email, secret, email_confirmed, created)
		VALUES (?1, ?2, ?3, ?4, ?5);`,
		account.ID,
		account.Email,
		account.Secret,
		account.EmailConfirmed,
		time.Now().Unix(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", service.ErrEmailExists, account.Email)
		}
		return fmt.Errorf("couldn't insert into identity: %w", err)
	}

	for i, claim := range account.Claims {
		_, err = tx.Exec(`
			INSERT INTO claim (owner, position, type, value)
			VALUES (?1, ?2, ?3, ?4);`,
			account.ID,
			i,
			claim.Type,
			claim.Value,
		)
		if err != nil {
			return fmt.Errorf("couldn't insert into claim: %w", err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) EmailExists(
	email string,
) (
	bool,
	error,
) {
	row := s.db.QueryRow(`
		SELECT EXISTS (
			SELECT 1
			FROM identity i
			WHERE i.email=?1
		);`,
		email,
	)

	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, fmt.Errorf("couldn't scan identity exists: %w", err)
	}
	return exists, nil
}

func (s *SQLiteStore) GetSecret(
	email string,
) (
	string,
	[]byte,
	error,
) {
	row := s.db.QueryRow(`
		SELECT id, secret
		FROM identity i
		WHERE i.email=?1;`,
		email,
	)

	var id string
	var secret []byte
	if err := row.Scan(&id, &secret); err != nil {
		return "", nil, fmt.Errorf("couldn't scan identity secret: %w", err)
	}
	return id, secret, nil
}

func (s *SQLiteStore) GetUserInfo(
	id string,
) (
	*identity.UserInfo,
	error,
) {
	row := s.db.QueryRow(`
		SELECT email, email_confirmed
		FROM identity i
		WHERE i.id=?1;`,
		id,
	)

	info := &identity.UserInfo{}
	if err := row.Scan(&info.Email, &info.IsEmailConfirmed); err != nil {
		return nil, fmt.Errorf("couldn't scan identity: %w", err)
	}

	rows, err := s.db.Query(`
		SELECT type, value
		FROM claim c
		WHERE c.owner=?1
		ORDER BY c.position;`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("couldn't query claims: %w", err)
	}
	defer rows.Close()

	info.Claims = identity.Claims{}
	for rows.Next() {
		var claim identity.Claim
		if err := rows.Scan(&claim.Type, &claim.Value); err != nil {
			return nil, fmt.Errorf("couldn't scan claim: %w", err)
		}
		info.Claims = append(info.Claims, claim)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("couldn't read claims: %w", err)
	}

	return info, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
		sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
}
