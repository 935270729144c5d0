package entity

// Book is a row of the /books resource.
type Book struct {
	ID      int     `json:"id"`
	Title   string  `json:"title"`
	Cover   *string `json:"cover,omitempty"`
	Summary *string `json:"summary,omitempty"`
	Genre   *string `json:"genre,omitempty"`
}

// Author is a row of the /authors resource.
type Author struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// BookAuthor is a row of the /bookAuthors link table. Book and Author are
// only populated when the listing asked the store to expand them.
type BookAuthor struct {
	ID       int     `json:"id,omitempty"`
	BookID   int     `json:"bookId"`
	AuthorID int     `json:"authorId"`
	Book     *Book   `json:"book,omitempty"`
	Author   *Author `json:"author,omitempty"`
}
