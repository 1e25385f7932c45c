// internal/service/service.go
package service

import "time"

const dateLayout = "2006-01-02"

// validDate reports whether s is a well-formed YYYY-MM-DD date.
func validDate(s string) bool {
	_, err := time.Parse(dateLayout, s)
	return err == nil
}
