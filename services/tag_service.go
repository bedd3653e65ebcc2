package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/vnkhanh/devflow-backend/models"
)

const (
	DefaultTagsPageSize         = 20
	DefaultTagQuestionsPageSize = 10
	DefaultPopularTagsLimit     = 5
	DefaultUserTopTagsLimit     = 3
)

// Bộ lọc sắp xếp danh sách tag
type TagFilter string

const (
	FilterNone    TagFilter = ""
	FilterPopular TagFilter = "popular"
	FilterRecent  TagFilter = "recent"
	FilterOld     TagFilter = "old"
	FilterName    TagFilter = "name"
)

const questionCountColumn = "(SELECT COUNT(*) FROM question_tags WHERE question_tags.tag_id = tags.id) AS question_count"

var validate = validator.New()

type TagService struct {
	db *gorm.DB

	TagsPageSize         int
	TagQuestionsPageSize int
}

func NewTagService(db *gorm.DB) *TagService {
	return &TagService{
		db:                   db,
		TagsPageSize:         DefaultTagsPageSize,
		TagQuestionsPageSize: DefaultTagQuestionsPageSize,
	}
}

type ListTagsParams struct {
	SearchQuery string
	Filter      TagFilter
	Page        int
	PageSize    int
}

type TagPage struct {
	Tags   []models.Tag `json:"tags"`
	IsNext bool         `json:"isNext"`
}

type TagDetailParams struct {
	TagID       string
	SearchQuery string
	Page        int
	PageSize    int
}

type TagDetail struct {
	TagName        string            `json:"tagName"`
	CompanyName    string            `json:"companyName"`
	CompanyWebsite string            `json:"companyWebsite"`
	Questions      []models.Question `json:"questions"`
	IsNext         bool              `json:"isNext"`
}

type CreateTagInput struct {
	Name           string `json:"name" validate:"required"`
	Description    string `json:"description" validate:"required"`
	DevelopedBy    string `json:"developedBy" validate:"required"`
	CompanyWebsite string `json:"companyWebsite" validate:"required,url"`
}

// Trường nil hoặc rỗng sau khi trim được giữ nguyên giá trị cũ
type UpdateTagInput struct {
	ID             string
	Name           *string
	Description    *string
	DevelopedBy    *string
	CompanyWebsite *string
}

// orderFor chuyển filter thành khóa sắp xếp cụ thể; FilterNone giữ thứ tự mặc định của DB
func orderFor(filter TagFilter) (string, error) {
	switch filter {
	case FilterNone:
		return "", nil
	case FilterPopular:
		return "question_count DESC", nil
	case FilterRecent:
		return "tags.created_at DESC", nil
	case FilterOld:
		return "tags.created_at ASC", nil
	case FilterName:
		return "tags.name ASC", nil
	default:
		return "", fmt.Errorf("%w: unknown filter %q", ErrValidation, filter)
	}
}

func containsPattern(search string) string {
	return "%" + strings.ToLower(search) + "%"
}

func (s *TagService) ListTags(ctx context.Context, p ListTagsParams) (TagPage, error) {
	const op = "ListTags"
	fields := logrus.Fields{"search": p.SearchQuery, "filter": p.Filter, "page": p.Page}

	order, err := orderFor(p.Filter)
	if err != nil {
		return TagPage{}, logFailure(op, err, fields)
	}

	page, pageSize := normalizePage(p.Page, p.PageSize, s.TagsPageSize)
	offset := pageOffset(page, pageSize)
	search := strings.TrimSpace(p.SearchQuery)

	filtered := func() *gorm.DB {
		query := s.db.WithContext(ctx).Model(&models.Tag{})
		if search != "" {
			query = query.Where("LOWER(tags.name) LIKE ?", containsPattern(search))
		}
		return query
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return TagPage{}, logFailure(op, fmt.Errorf("count tags: %w", err), fields)
	}

	query := filtered().Select("tags.*, " + questionCountColumn)
	if order != "" {
		query = query.Order(order)
	}

	tags := []models.Tag{}
	if err := query.Offset(offset).Limit(pageSize).Find(&tags).Error; err != nil {
		return TagPage{}, logFailure(op, fmt.Errorf("find tags: %w", err), fields)
	}

	return TagPage{
		Tags:   tags,
		IsNext: hasNextPage(total, offset, len(tags)),
	}, nil
}

// PopularTags trả về top-N tag theo số câu hỏi
func (s *TagService) PopularTags(ctx context.Context, limit int) ([]models.Tag, error) {
	if limit < 1 {
		limit = DefaultPopularTagsLimit
	}

	tags := []models.Tag{}
	err := s.db.WithContext(ctx).
		Model(&models.Tag{}).
		Select("tags.*, " + questionCountColumn).
		Order("question_count DESC").
		Order("tags.name ASC").
		Limit(limit).
		Find(&tags).Error
	if err != nil {
		return nil, logFailure("PopularTags", fmt.Errorf("find popular tags: %w", err), logrus.Fields{"limit": limit})
	}
	return tags, nil
}

// TopTagsForUser xếp hạng các tag trên câu hỏi của user theo số câu hỏi của user mang tag đó.
// userRef có thể là UUID nội bộ hoặc clerk id.
func (s *TagService) TopTagsForUser(ctx context.Context, userRef string, limit int) ([]models.Tag, error) {
	const op = "TopTagsForUser"
	fields := logrus.Fields{"user": userRef, "limit": limit}

	userRef = strings.TrimSpace(userRef)
	if userRef == "" {
		return nil, logFailure(op, fmt.Errorf("%w: user id is required", ErrValidation), fields)
	}
	if limit < 1 {
		limit = DefaultUserTopTagsLimit
	}

	user, err := s.findUser(ctx, userRef)
	if err != nil {
		return nil, logFailure(op, err, fields)
	}

	tags := []models.Tag{}
	err = s.db.WithContext(ctx).
		Model(&models.Tag{}).
		Select("tags.*, COUNT(questions.id) AS question_count").
		Joins("JOIN question_tags ON question_tags.tag_id = tags.id").
		Joins("JOIN questions ON questions.id = question_tags.question_id").
		Where("questions.author_id = ?", user.ID).
		Group("tags.id").
		Order("question_count DESC").
		Order("tags.name ASC").
		Limit(limit).
		Find(&tags).Error
	if err != nil {
		return nil, logFailure(op, fmt.Errorf("aggregate user tags: %w", err), fields)
	}
	return tags, nil
}

func (s *TagService) findUser(ctx context.Context, userRef string) (models.User, error) {
	var user models.User
	query := s.db.WithContext(ctx).Select("id")
	if id, err := uuid.Parse(userRef); err == nil {
		query = query.Where("id = ?", id)
	} else {
		query = query.Where("clerk_id = ?", userRef)
	}

	if err := query.First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return user, fmt.Errorf("%w: user %s", ErrNotFound, userRef)
		}
		return user, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

// GetTagByID: id không phải UUID cũng coi là không tìm thấy
func (s *TagService) GetTagByID(ctx context.Context, tagID string) (models.Tag, error) {
	var tag models.Tag

	id, err := uuid.Parse(strings.TrimSpace(tagID))
	if err != nil {
		return tag, fmt.Errorf("%w: tag %s", ErrNotFound, tagID)
	}

	if err := s.db.WithContext(ctx).First(&tag, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tag, fmt.Errorf("%w: tag %s", ErrNotFound, tagID)
		}
		return tag, fmt.Errorf("find tag: %w", err)
	}
	return tag, nil
}

func (s *TagService) TagDetail(ctx context.Context, p TagDetailParams) (TagDetail, error) {
	const op = "TagDetail"
	fields := logrus.Fields{"tag": p.TagID, "search": p.SearchQuery, "page": p.Page}

	tag, err := s.GetTagByID(ctx, p.TagID)
	if err != nil {
		return TagDetail{}, logFailure(op, err, fields)
	}

	page, pageSize := normalizePage(p.Page, p.PageSize, s.TagQuestionsPageSize)
	offset := pageOffset(page, pageSize)
	search := strings.TrimSpace(p.SearchQuery)

	tagged := func() *gorm.DB {
		query := s.db.WithContext(ctx).
			Model(&models.Question{}).
			Joins("JOIN question_tags ON question_tags.question_id = questions.id").
			Where("question_tags.tag_id = ?", tag.ID)
		if search != "" {
			query = query.Where("LOWER(questions.title) LIKE ?", containsPattern(search))
		}
		return query
	}

	var total int64
	if err := tagged().Count(&total).Error; err != nil {
		return TagDetail{}, logFailure(op, fmt.Errorf("count tag questions: %w", err), fields)
	}

	questions := []models.Question{}
	err = tagged().
		Select("questions.*").
		Preload("Tags", func(db *gorm.DB) *gorm.DB {
			return db.Select("id, name")
		}).
		Preload("Author", func(db *gorm.DB) *gorm.DB {
			return db.Select("id, clerk_id, name, username, picture")
		}).
		Order("questions.created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&questions).Error
	if err != nil {
		return TagDetail{}, logFailure(op, fmt.Errorf("populate tag questions: %w", err), fields)
	}

	return TagDetail{
		TagName:        tag.Name,
		CompanyName:    tag.DevelopedBy,
		CompanyWebsite: tag.CompanyWebsite,
		Questions:      questions,
		IsNext:         hasNextPage(total, offset, len(questions)),
	}, nil
}

func (s *TagService) CreateTag(ctx context.Context, in CreateTagInput) (models.Tag, error) {
	const op = "CreateTag"

	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.DevelopedBy = strings.TrimSpace(in.DevelopedBy)
	in.CompanyWebsite = strings.TrimSpace(in.CompanyWebsite)
	fields := logrus.Fields{"name": in.Name}

	if err := validate.Struct(in); err != nil {
		return models.Tag{}, logFailure(op, validationError(err), fields)
	}
	if !models.IsAllowedTagName(in.Name) {
		return models.Tag{}, logFailure(op, fmt.Errorf("%w: tag name %q is not allowed", ErrValidation, in.Name), fields)
	}

	if err := s.ensureNameFree(ctx, in.Name, uuid.Nil); err != nil {
		return models.Tag{}, logFailure(op, err, fields)
	}

	tag := models.Tag{
		Name:           in.Name,
		Slug:           slug.Make(in.Name),
		Description:    in.Description,
		DevelopedBy:    in.DevelopedBy,
		CompanyWebsite: in.CompanyWebsite,
	}
	if err := s.db.WithContext(ctx).Create(&tag).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			err = fmt.Errorf("%w: tag %q", ErrDuplicate, in.Name)
		} else {
			err = fmt.Errorf("create tag: %w", err)
		}
		return models.Tag{}, logFailure(op, err, fields)
	}
	return tag, nil
}

func (s *TagService) UpdateTag(ctx context.Context, in UpdateTagInput) (models.Tag, error) {
	const op = "UpdateTag"
	fields := logrus.Fields{"tag": in.ID}

	if strings.TrimSpace(in.ID) == "" {
		return models.Tag{}, logFailure(op, fmt.Errorf("%w: tag id is required", ErrValidation), fields)
	}

	tag, err := s.GetTagByID(ctx, in.ID)
	if err != nil {
		return models.Tag{}, logFailure(op, err, fields)
	}

	// Không kiểm tra lại AllowedTagNames khi đổi tên
	if name, ok := provided(in.Name); ok && name != tag.Name {
		if err := s.ensureNameFree(ctx, name, tag.ID); err != nil {
			return models.Tag{}, logFailure(op, err, fields)
		}
		tag.Name = name
		tag.Slug = slug.Make(name)
	}
	if description, ok := provided(in.Description); ok {
		tag.Description = description
	}
	if developedBy, ok := provided(in.DevelopedBy); ok {
		tag.DevelopedBy = developedBy
	}
	if website, ok := provided(in.CompanyWebsite); ok {
		tag.CompanyWebsite = website
	}

	err = s.db.WithContext(ctx).
		Model(&tag).
		Select("name", "slug", "description", "developed_by", "company_website", "updated_at").
		Updates(&tag).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			err = fmt.Errorf("%w: tag %q", ErrDuplicate, tag.Name)
		} else {
			err = fmt.Errorf("update tag: %w", err)
		}
		return models.Tag{}, logFailure(op, err, fields)
	}

	updated, err := s.GetTagByID(ctx, tag.ID.String())
	if err != nil {
		return models.Tag{}, logFailure(op, err, fields)
	}
	return updated, nil
}

// ensureNameFree: so khớp tên chính xác, bỏ qua tag đang sửa
func (s *TagService) ensureNameFree(ctx context.Context, name string, exclude uuid.UUID) error {
	query := s.db.WithContext(ctx).Model(&models.Tag{}).Where("name = ?", name)
	if exclude != uuid.Nil {
		query = query.Where("id <> ?", exclude)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return fmt.Errorf("check tag name: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: tag %q", ErrDuplicate, name)
	}
	return nil
}

func provided(v *string) (string, bool) {
	if v == nil {
		return "", false
	}
	trimmed := strings.TrimSpace(*v)
	return trimmed, trimmed != ""
}

func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case "url":
			msgs = append(msgs, fmt.Sprintf("%s must be a valid URL", fe.Field()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}
	return fmt.Errorf("%w: %s", ErrValidation, strings.Join(msgs, "; "))
}
