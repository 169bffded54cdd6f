package formats_test

import "github.com/google/uuid"

func uuid5(name string) string {
	return uuid.NewSHA1(uuid.NameSpaceDNS, []byte(name)).String()
}
