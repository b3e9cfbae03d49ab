package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/campusarena/campus-arena-api/internal/domain"
	"github.com/campusarena/campus-arena-api/internal/media"
	"github.com/campusarena/campus-arena-api/internal/repository/ports"
)

var (
	ErrAvatarTooLarge = errors.New("avatar exceeds the maximum allowed size")
	ErrUsernameTaken  = errors.New("username already taken")
)

type ProfileService struct {
	users     ports.UserRepository
	storage   ports.ObjectStorage
	presence  ports.PresenceStore
	processor media.Processor

	avatarBucket   string
	avatarMaxBytes int64
}

func NewProfileService(users ports.UserRepository, storage ports.ObjectStorage, presence ports.PresenceStore, processor media.Processor, avatarBucket string, avatarMaxBytes int64) *ProfileService {
	return &ProfileService{
		users:          users,
		storage:        storage,
		presence:       presence,
		processor:      processor,
		avatarBucket:   avatarBucket,
		avatarMaxBytes: avatarMaxBytes,
	}
}

func (s *ProfileService) Get(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return user, nil
}

type ProfileUpdate struct {
	FullName       *string
	Username       *string
	Department     *string
	Bio            *string
	GraduationYear *int
	Interests      []string
}

func (s *ProfileService) Update(ctx context.Context, userID uuid.UUID, update ProfileUpdate) (*domain.User, error) {
	current, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	completed := isProfileComplete(current, update)
	user, err := s.users.UpdateProfile(ctx, userID, update.FullName, update.Username, update.Department, update.Bio, update.GraduationYear, update.Interests, completed)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrUsernameTaken
		}
		if isNotFound(err) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return user, nil
}

// isProfileComplete is true once name, username and department are all set,
// whether by this update or a previous one.
func isProfileComplete(current *domain.User, update ProfileUpdate) bool {
	has := func(existing *string, incoming *string) bool {
		if incoming != nil && strings.TrimSpace(*incoming) != "" {
			return true
		}
		return existing != nil && strings.TrimSpace(*existing) != ""
	}
	return has(current.FullName, update.FullName) &&
		has(current.Username, update.Username) &&
		has(current.Department, update.Department)
}

func (s *ProfileService) UploadAvatar(ctx context.Context, userID uuid.UUID, upload media.Upload) (string, error) {
	if s.avatarMaxBytes > 0 && upload.Size > s.avatarMaxBytes {
		return "", ErrAvatarTooLarge
	}

	result, err := s.processor.Process(ctx, upload, media.DefaultAvatarDimension)
	if err != nil {
		return "", err
	}

	ext := extensionFor(result.ContentType, upload.FileName)
	objectName := fmt.Sprintf("%s/%s%s", userID, uuid.NewString(), ext)

	url, err := s.storage.Upload(ctx, s.avatarBucket, objectName, result.ContentType, bytes.NewReader(result.Bytes), int64(len(result.Bytes)))
	if err != nil {
		return "", err
	}

	if err := s.users.UpdateAvatar(ctx, userID, url); err != nil {
		return "", err
	}
	return url, nil
}

func extensionFor(contentType, fileName string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	}
	if ext := path.Ext(fileName); ext != "" {
		return strings.ToLower(ext)
	}
	return ".jpg"
}

type ClassmateItem struct {
	User   domain.User `json:"user"`
	Online bool        `json:"online"`
}

type ClassmateListResult struct {
	Items  []ClassmateItem
	Total  int64
	Limit  int
	Offset int
}

// Classmates lists verified accounts matching the filter, excluding the
// viewer, with a live presence flag merged in from the presence store.
func (s *ProfileService) Classmates(ctx context.Context, viewerID uuid.UUID, filter domain.ClassmateFilter) (*ClassmateListResult, error) {
	filter.Limit, filter.Offset = normalizePagination(filter.Limit, filter.Offset)

	users, err := s.users.ListClassmates(ctx, viewerID, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.users.CountClassmates(ctx, viewerID, filter)
	if err != nil {
		return nil, err
	}

	online := map[uuid.UUID]bool{}
	if s.presence != nil && len(users) > 0 {
		ids := make([]uuid.UUID, len(users))
		for i, u := range users {
			ids[i] = u.ID
		}
		online, err = s.presence.OnlineAmong(ctx, ids)
		if err != nil {
			// Presence is cosmetic; the directory still renders without it.
			log.Printf("presence lookup failed: %v", err)
			online = map[uuid.UUID]bool{}
		}
	}

	items := make([]ClassmateItem, 0, len(users))
	for _, u := range users {
		items = append(items, ClassmateItem{User: u, Online: online[u.ID]})
	}

	return &ClassmateListResult{Items: items, Total: total, Limit: filter.Limit, Offset: filter.Offset}, nil
}

func normalizePagination(limit, offset int) (int, int) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
