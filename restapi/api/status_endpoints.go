package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/airportinternet/airport/conn"
	"github.com/gin-gonic/gin"
)

// GenericResponse is returned for errors and for requests without a body of their own
type GenericResponse struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Status returns the current conn.Status as JSON
// @Summary      Get the connector status
// @Description  Returns state, session and routing parameter of the current connection attempt.
// @Tags         connector
// @Produce      json
// @Success      200  {object}  conn.Status
// @Router       /status [get]
func Status(c Controller) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, c.Status())
	}
}

// Log returns the cumulative tunnel log as plain text. With ?offset=N only the part after the first N bytes is
// returned, so clients can follow the log. The X-Log-Length header carries the total length.
// @Summary      Get the tunnel log
// @Description  Returns the cumulative output of iodine and the connector messages. With offset only the part after the first offset bytes is returned, X-Log-Length carries the total length.
// @Tags         connector
// @Produce      plain
// @Param        offset  query     int  false  "bytes to skip"
// @Success      200  {string}  string
// @Failure      400  {object}  GenericResponse
// @Router       /log [get]
func Log(c Controller) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		fullLog := c.FullLog()
		offset := 0
		if raw := ctx.Query("offset"); raw != "" {
			var err error
			offset, err = strconv.Atoi(raw)
			if err != nil || offset < 0 {
				ctx.JSON(http.StatusBadRequest, GenericResponse{Error: "offset must be a non negative number"})
				return
			}
		}
		if offset > len(fullLog) {
			offset = len(fullLog)
		}
		ctx.Header("X-Log-Length", strconv.Itoa(len(fullLog)))
		ctx.String(http.StatusOK, fullLog[offset:])
	}
}

// Stop kills the tunnel and waits until it is gone
// @Summary      Stop the tunnel
// @Description  Kills iodine and returns once the process is gone.
// @Tags         connector
// @Produce      json
// @Success      200  {object}  conn.Status
// @Failure      409  {object}  GenericResponse
// @Failure      500  {object}  GenericResponse
// @Router       /stop [post]
func Stop(c Controller) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		err := c.Stop()
		if errors.Is(err, conn.ErrNotRunning) {
			ctx.JSON(http.StatusConflict, GenericResponse{Error: err.Error()})
			return
		}
		if err != nil {
			ctx.JSON(http.StatusInternalServerError, GenericResponse{Error: err.Error()})
			return
		}
		ctx.JSON(http.StatusOK, c.Status())
	}
}
