package mongo

import "errors"

var ErrFailedToConnect = errors.New("mongo: failed to connect to server")
