package main

import (
	"github.com/pquerna/ffjson/ffjson"
)

func Unmarshal(data []byte, structPtr interface{}) error {
	return ffjson.Unmarshal(data, structPtr)
}

func Marshal(structPtr interface{}) ([]byte, error) {
	return ffjson.Marshal(structPtr)
}
