package enums

import "fmt"

// CartStorageDriver selects where persisted cart blobs live.
type CartStorageDriver string

const (
	CartStorageMemory CartStorageDriver = "memory"
	CartStorageRedis  CartStorageDriver = "redis"
	CartStorageDB     CartStorageDriver = "db"
)

var validCartStorageDrivers = []CartStorageDriver{
	CartStorageMemory,
	CartStorageRedis,
	CartStorageDB,
}

// String implements fmt.Stringer.
func (d CartStorageDriver) String() string {
	return string(d)
}

// IsValid reports whether the value is a known CartStorageDriver.
func (d CartStorageDriver) IsValid() bool {
	for _, candidate := range validCartStorageDrivers {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseCartStorageDriver converts raw input into a CartStorageDriver.
func ParseCartStorageDriver(value string) (CartStorageDriver, error) {
	for _, candidate := range validCartStorageDrivers {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid cart storage driver %q", value)
}
