package cerr

import (
	"fmt"
	"github.com/apex/log"
	"github.com/cockroachdb/errors"
	"strings"
)

type F map[string]any

// Context accumulates error fields fluently before the error is created:
// cerr.Field("job_id", id).Wrap(err).Error("Failed to do the thing")
type Context struct {
	fields  F
	wrapped error
}

func Field(key string, value any) Context {
	return Context{}.Field(key, value)
}

func Fields(fields F) Context {
	return Context{}.Fields(fields)
}

func Wrap(err error) Context {
	return Context{}.Wrap(err)
}

func Error(msg string) error {
	return Context{}.Error(msg)
}

func (c Context) Field(key string, value any) Context {
	newFields := make(F, len(c.fields)+1)
	for k, v := range c.fields {
		newFields[k] = v
	}

	newFields[key] = value
	c.fields = newFields
	return c
}

func (c Context) Fields(fields F) Context {
	newCtx := c
	for key, value := range fields {
		newCtx = newCtx.Field(key, value)
	}

	return newCtx
}

func (c Context) Wrap(err error) Context {
	c.wrapped = err
	return c
}

func (c Context) Error(msg string) error {
	var err error
	if c.wrapped != nil {
		err = errors.Wrap(c.wrapped, msg)
	} else {
		err = errors.New(msg)
	}

	for key, value := range c.fields {
		err = errors.WithDetail(err, fmt.Sprintf("%s: %+v", key, value))
	}

	return err
}

func Log(err error) {
	if err == nil {
		return
	}

	entry := log.WithError(err)

	details := Details(err)
	if details != "" {
		entry = entry.WithField("details", details)
	}

	entry.Error(err.Error())
}

// Details flattens the accumulated error fields into one loggable string.
func Details(err error) string {
	return strings.Join(errors.GetAllDetails(err), "\n")
}
