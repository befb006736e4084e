package handler

import (
    "net/http" // status codes

    "github.com/labstack/echo/v4" // echo is the web framework used for this project
)

// Health is a liveness endpoint for load balancers and monitoring. It
// does not touch the database; a 200 only means the process is up.
func Health(c echo.Context) error {
    return c.String(http.StatusOK, "ok")
}
