package domain

type Category struct {
	ID     int    `json:"id"`
	UserId int    `json:"userId"`
	Name   string `json:"name"`
	Color  string `json:"color"`
}

func (c *Category) BelongsToUser(userID int) bool {
	return c.UserId == userID
}
