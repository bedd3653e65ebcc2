package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/vnkhanh/devflow-backend/config"
	"github.com/vnkhanh/devflow-backend/models"
)

type fixture struct {
	db    *gorm.DB
	svc   *TagService
	tags  map[string]models.Tag
	users map[string]models.User
	qs    map[string]models.Question
}

func at(day int) time.Time {
	return time.Date(2024, time.March, day, 9, 0, 0, 0, time.UTC)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := config.Open(config.Settings{DBDriver: "sqlite", DBPath: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// newFixture: rust có 3 câu hỏi, python 2, golang 1, mongo 0
func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := newTestDB(t)
	f := &fixture{
		db:    db,
		svc:   NewTagService(db),
		tags:  map[string]models.Tag{},
		users: map[string]models.User{},
		qs:    map[string]models.Question{},
	}

	for i, name := range []string{"golang", "rust", "python", "mongo"} {
		tag := models.Tag{
			Name:           name,
			Slug:           name,
			Description:    name + " questions",
			DevelopedBy:    name + " team",
			CompanyWebsite: "https://" + name + ".example.com",
			CreatedAt:      at(i + 1),
		}
		require.NoError(t, db.Create(&tag).Error)
		f.tags[name] = tag
	}

	for _, name := range []string{"alice", "bob"} {
		user := models.User{
			ClerkID:  "user_" + name,
			Name:     name,
			Username: name,
			Picture:  "https://img.example.com/" + name + ".png",
		}
		require.NoError(t, db.Create(&user).Error)
		f.users[name] = user
	}

	questions := []struct {
		key, title, author string
		tags               []string
		day                int
	}{
		{"q1", "How to borrow in Rust", "alice", []string{"rust", "python"}, 10},
		{"q2", "Rust lifetimes explained", "alice", []string{"rust"}, 11},
		{"q3", "Rust async runtime vs goroutines", "bob", []string{"rust", "golang"}, 12},
		{"q4", "Python typing", "bob", []string{"python"}, 13},
	}
	for _, q := range questions {
		question := models.Question{
			Title:     q.title,
			Content:   "body of " + q.title,
			AuthorID:  f.users[q.author].ID,
			CreatedAt: at(q.day),
		}
		for _, tagName := range q.tags {
			question.Tags = append(question.Tags, f.tags[tagName])
		}
		require.NoError(t, db.Create(&question).Error)
		f.qs[q.key] = question
	}

	return f
}

func tagNames(tags []models.Tag) []string {
	names := make([]string, 0, len(tags))
	for _, tag := range tags {
		names = append(names, tag.Name)
	}
	return names
}

func questionTitles(questions []models.Question) []string {
	titles := make([]string, 0, len(questions))
	for _, q := range questions {
		titles = append(titles, q.Title)
	}
	return titles
}

func strPtr(s string) *string {
	return &s
}
