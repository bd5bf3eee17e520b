package utils

import "github.com/gin-gonic/gin"

// JSONSuccess writes the standard success envelope, merging extra fields
// into the top level alongside the success flag.
func JSONSuccess(c *gin.Context, code int, data gin.H) {
	body := gin.H{"success": true}
	for k, v := range data {
		body[k] = v
	}
	c.JSON(code, body)
}

func JSONError(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"success": false, "message": message})
}
