package domain

import "time"

// Article is a titled game write-up owned by exactly one author.
// Author holds the creator's username by value.
type Article struct {
	ID        int64     `db:"id"`
	Title     string    `db:"title"`
	Content   string    `db:"content"`
	Author    string    `db:"author"`
	CreatedAt time.Time `db:"created_at"`
}

// OwnedBy reports whether username may mutate the article.
func (a *Article) OwnedBy(username string) bool {
	return a != nil && username != "" && a.Author == username
}
