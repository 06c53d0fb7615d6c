package session

import (
	"bufio"
	"encoding/json"
	"os"
	"strings"

	"github.com/kestrelcraft/launchcore/internal/httpapi"
)

// storedSession is the on-disk representation of a single session,
// tagged implicitly by which bucket it lives under.
type storedSession struct {
	AccessToken  string `json:"access_token"`
	Username     string `json:"username"`
	UUID         string `json:"uuid"`
	ClientToken  string `json:"client_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ClientID     string `json:"client_id,omitempty"`
	RedirectURI  string `json:"redirect_uri,omitempty"`
}

type storedBucket struct {
	Sessions map[string]storedSession `json:"sessions"`
}

type storedFile struct {
	Yggdrasil *storedBucket `json:"yggdrasil,omitempty"`
	Microsoft *storedBucket `json:"microsoft,omitempty"`
}

// Store is a durable, file-backed registry of sessions keyed by
// provider type (legacy/Microsoft) and account identity (email or
// username).
type Store struct {
	path       string
	legacyPath string

	yggdrasil map[string]*LegacySession
	microsoft map[string]*OAuthSession
}

// NewStore creates a session store backed by path, with legacyPath as
// the one-time migration source for the pre-JSON, space-delimited
// session file format.
func NewStore(path, legacyPath string) *Store {
	return &Store{
		path:       path,
		legacyPath: legacyPath,
		yggdrasil:  map[string]*LegacySession{},
		microsoft:  map[string]*OAuthSession{},
	}
}

// Load reads the store's JSON file, attaching client to every
// reconstructed session so its Validate/Refresh/Invalidate methods work.
// If the JSON file does not yet exist, it migrates the legacy
// space-delimited text format (if present) and deletes that file.
func (s *Store) Load(client *httpapi.Client) error {
	s.yggdrasil = map[string]*LegacySession{}
	s.microsoft = map[string]*OAuthSession{}

	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return s.loadLegacyAndDelete(client)
	}
	if err != nil {
		return err
	}

	var file storedFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil
	}

	if file.Yggdrasil != nil {
		for email, sd := range file.Yggdrasil.Sessions {
			s.yggdrasil[email] = &LegacySession{
				client:      client,
				AccessToken: sd.AccessToken,
				Username:    sd.Username,
				UUID:        sd.UUID,
				ClientToken: sd.ClientToken,
			}
		}
	}
	if file.Microsoft != nil {
		for email, sd := range file.Microsoft.Sessions {
			s.microsoft[email] = &OAuthSession{
				client:       client,
				AccessToken:  sd.AccessToken,
				Username:     sd.Username,
				UUID:         sd.UUID,
				RefreshToken: sd.RefreshToken,
				ClientID:     sd.ClientID,
				RedirectURI:  sd.RedirectURI,
			}
		}
	}
	return nil
}

// loadLegacyAndDelete parses the pre-JSON session file, a sequence of
// "email clientToken username uuid accessToken" lines, one per
// Yggdrasil session, then removes it so migration only ever runs once.
func (s *Store) loadLegacyAndDelete(client *httpapi.Client) error {
	f, err := os.Open(s.legacyPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return nil
	}

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		parts := strings.Split(scanner.Text(), " ")
		if len(parts) != 5 {
			continue
		}
		s.yggdrasil[parts[0]] = &LegacySession{
			client:      client,
			AccessToken: parts[4],
			Username:    parts[2],
			UUID:        parts[3],
			ClientToken: parts[1],
		}
	}
	f.Close()

	return os.Remove(s.legacyPath)
}

// Save writes every held session back to the store's JSON file.
func (s *Store) Save() error {
	file := storedFile{
		Yggdrasil: &storedBucket{Sessions: map[string]storedSession{}},
		Microsoft: &storedBucket{Sessions: map[string]storedSession{}},
	}
	for email, sess := range s.yggdrasil {
		file.Yggdrasil.Sessions[email] = storedSession{
			AccessToken: sess.AccessToken,
			Username:    sess.Username,
			UUID:        sess.UUID,
			ClientToken: sess.ClientToken,
		}
	}
	for email, sess := range s.microsoft {
		file.Microsoft.Sessions[email] = storedSession{
			AccessToken:  sess.AccessToken,
			Username:     sess.Username,
			UUID:         sess.UUID,
			RefreshToken: sess.RefreshToken,
			ClientID:     sess.ClientID,
			RedirectURI:  sess.RedirectURI,
		}
	}

	raw, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, raw, 0o644)
}

// GetLegacy returns the stored Yggdrasil session for an identity, if any.
func (s *Store) GetLegacy(identity string) (*LegacySession, bool) {
	sess, ok := s.yggdrasil[identity]
	return sess, ok
}

// GetMicrosoft returns the stored Microsoft session for an identity, if any.
func (s *Store) GetMicrosoft(identity string) (*OAuthSession, bool) {
	sess, ok := s.microsoft[identity]
	return sess, ok
}

// PutLegacy registers or replaces a Yggdrasil session under identity.
func (s *Store) PutLegacy(identity string, sess *LegacySession) {
	s.yggdrasil[identity] = sess
}

// PutMicrosoft registers or replaces a Microsoft session under identity.
func (s *Store) PutMicrosoft(identity string, sess *OAuthSession) {
	s.microsoft[identity] = sess
}

// RemoveLegacy deletes and returns the Yggdrasil session under identity,
// if one existed.
func (s *Store) RemoveLegacy(identity string) (*LegacySession, bool) {
	sess, ok := s.yggdrasil[identity]
	if ok {
		delete(s.yggdrasil, identity)
	}
	return sess, ok
}

// RemoveMicrosoft deletes and returns the Microsoft session under
// identity, if one existed.
func (s *Store) RemoveMicrosoft(identity string) (*OAuthSession, bool) {
	sess, ok := s.microsoft[identity]
	if ok {
		delete(s.microsoft, identity)
	}
	return sess, ok
}
