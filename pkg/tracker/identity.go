package tracker

import "reflect"

// Identity identifies the kind of service a register is asked for. Two
// identities are the same service kind when their names are equal.
type Identity string

// String returns the name handed to the directory.
func (id Identity) String() string {
	return string(id)
}

// TypeIdentity returns the identity of T, its fully qualified type name.
func TypeIdentity[T any]() Identity {
	return identityOfType(reflect.TypeOf((*T)(nil)).Elem())
}

// IdentityOf returns the identity of the dynamic type of v. A pointer is
// dereferenced once, so *Foo and Foo are the same service kind.
func IdentityOf(v interface{}) Identity {
	t := reflect.TypeOf(v)
	if t == nil {
		return ""
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return identityOfType(t)
}

func identityOfType(t reflect.Type) Identity {
	if t.Name() != "" && t.PkgPath() != "" {
		return Identity(t.PkgPath() + "." + t.Name())
	}
	return Identity(t.String())
}
