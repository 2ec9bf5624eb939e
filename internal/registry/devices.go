package registry

import (
	_ "github.com/Galtar27/PSMoveService/device/morpheus" // Register Morpheus HMD driver
)
