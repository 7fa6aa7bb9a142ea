package common

import "fmt"

// StoreErrType classifies tangle store errors.
type StoreErrType uint32

const (
	// KeyNotFound is returned when a block ID is not in the store.
	KeyNotFound StoreErrType = iota
	// KeyAlreadyExists is returned when inserting a block whose ID is already
	// in the store.
	KeyAlreadyExists
	// InvalidSignature is returned when a block's signature does not verify
	// against its creator.
	InvalidSignature
	// Empty is returned when querying an empty store.
	Empty
)

// StoreErr is a typed store error carrying the data type and key involved.
type StoreErr struct {
	dataType string
	errType  StoreErrType
	key      string
}

// NewStoreErr creates a new StoreErr.
func NewStoreErr(dataType string, errType StoreErrType, key string) StoreErr {
	return StoreErr{
		dataType: dataType,
		errType:  errType,
		key:      key,
	}
}

// Error implements the error interface.
func (e StoreErr) Error() string {
	m := ""
	switch e.errType {
	case KeyNotFound:
		m = "Not Found"
	case KeyAlreadyExists:
		m = "Key Already Exists"
	case InvalidSignature:
		m = "Invalid Signature"
	case Empty:
		m = "Empty"
	}

	return fmt.Sprintf("%s, %s, %s", e.dataType, e.key, m)
}

// IsStore checks that an error is a StoreErr with the given code.
func IsStore(err error, t StoreErrType) bool {
	storeErr, ok := err.(StoreErr)
	return ok && storeErr.errType == t
}
