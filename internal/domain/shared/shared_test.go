package shared

import "time"

var fixedNow = time.Date(2024, 3, 15, 10, 0, 0, 0, time.Local)
