package tracker

import "github.com/pkg/errors"

// Get returns the best provider of the service kind T.
func Get[T any](r *Register) (T, error) {
	return GetNamed[T](r, TypeIdentity[T]())
}

// GetOptional returns the best provider of the service kind T, false when there is none.
func GetOptional[T any](r *Register) (T, bool, error) {
	return GetOptionalNamed[T](r, TypeIdentity[T]())
}

// GetAll returns every provider of the service kind T.
func GetAll[T any](r *Register) ([]T, error) {
	return GetAllNamed[T](r, TypeIdentity[T]())
}

// GetNamed is Get for a directory whose names are not Go type names.
func GetNamed[T any](r *Register, id Identity) (T, error) {
	var zero T
	s, err := r.GetService(id)
	if err != nil {
		return zero, err
	}
	return cast[T](id, s)
}

// GetOptionalNamed is GetOptional for a directory whose names are not Go type names.
func GetOptionalNamed[T any](r *Register, id Identity) (T, bool, error) {
	var zero T
	s, ok, err := r.GetOptionalService(id)
	if err != nil || !ok {
		return zero, false, err
	}
	t, err := cast[T](id, s)
	if err != nil {
		return zero, false, err
	}
	return t, true, nil
}

// GetAllNamed is GetAll for a directory whose names are not Go type names.
func GetAllNamed[T any](r *Register, id Identity) ([]T, error) {
	services, err := r.GetServices(id)
	if err != nil {
		return []T{}, err
	}
	result := make([]T, 0, len(services))
	for _, s := range services {
		t, err := cast[T](id, s)
		if err != nil {
			return []T{}, err
		}
		result = append(result, t)
	}
	return result, nil
}

func cast[T any](id Identity, s interface{}) (T, error) {
	t, ok := s.(T)
	if !ok {
		var zero T
		return zero, errors.Wrapf(ErrTypeMismatch, "%s: got %T", id, s)
	}
	return t, nil
}
