// Package directory holds the campus directory records the people search
// runs over. The data is owned by an upstream identity feed; this service
// only queries and mirrors it.
package directory

// Person is one directory row. Field names follow the directory feed.
type Person struct {
	Userid     string `json:"userid"`
	Lastname   string `json:"lastname"`
	Firstname  string `json:"firstname"`
	Email      string `json:"email"`
	Title      string `json:"title"`
	Department string `json:"department"`
	Address    string `json:"address"`
	Phone      string `json:"phone"`
}
