package services

import "time"

var nowFunc = time.Now
