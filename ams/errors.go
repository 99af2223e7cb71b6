package ams

import "fmt"

// ErrorCode is the 32-bit ADS/AMS error code carried in AoEHeader.ErrorCode.
type ErrorCode uint32

// Common ADS/AMS error codes. Names and values follow the Beckhoff ADS
// error-code convention.
const (
	ErrNoError               ErrorCode = 0x0000
	ErrInternal              ErrorCode = 0x0001
	ErrNoRuntime             ErrorCode = 0x0002
	ErrTargetPortNotFound    ErrorCode = 0x0006
	ErrTargetMachineNotFound ErrorCode = 0x0007
	ErrUnknownCmdID          ErrorCode = 0x0008
	ErrPortNotConnected      ErrorCode = 0x000D
	ErrInvalidAmsLength      ErrorCode = 0x000E
	ErrInvalidAmsNetID       ErrorCode = 0x000F
	ErrPortDisabled          ErrorCode = 0x0012
	ErrPortAlreadyConnected  ErrorCode = 0x0013
	ErrNoMemory              ErrorCode = 0x0019
	ErrTCPSend               ErrorCode = 0x001A
	ErrHostUnreachable       ErrorCode = 0x001B
	ErrAccessDenied          ErrorCode = 0x001E

	ErrDeviceError           ErrorCode = 0x0700
	ErrDeviceSrvNotSupp      ErrorCode = 0x0701
	ErrDeviceInvalidGrp      ErrorCode = 0x0702
	ErrDeviceInvalidOffs     ErrorCode = 0x0703
	ErrDeviceInvalidAccess   ErrorCode = 0x0704
	ErrDeviceInvalidSize     ErrorCode = 0x0705
	ErrDeviceInvalidData     ErrorCode = 0x0706
	ErrDeviceNotReady        ErrorCode = 0x0707
	ErrDeviceBusy            ErrorCode = 0x0708
	ErrDeviceNoMemory        ErrorCode = 0x070A
	ErrDeviceInvalidParam    ErrorCode = 0x070B
	ErrDeviceNotFound        ErrorCode = 0x070C
	ErrDeviceSymbolNotFound  ErrorCode = 0x0710
	ErrDeviceInvalidState    ErrorCode = 0x0712
	ErrDeviceNotifyHndInvalid ErrorCode = 0x0714
	ErrDeviceNoMoreHdls      ErrorCode = 0x0716
	ErrDeviceNotInit         ErrorCode = 0x0718
	ErrDeviceTimeout         ErrorCode = 0x0719
)

var errorNames = map[ErrorCode]string{
	ErrNoError:                "no error",
	ErrInternal:                "internal error",
	ErrNoRuntime:               "no runtime",
	ErrTargetPortNotFound:      "target port not found",
	ErrTargetMachineNotFound:   "target machine not found",
	ErrUnknownCmdID:            "unknown command id",
	ErrPortNotConnected:        "port not connected",
	ErrInvalidAmsLength:        "invalid AMS length",
	ErrInvalidAmsNetID:         "invalid AMS net id",
	ErrPortDisabled:            "port disabled",
	ErrPortAlreadyConnected:    "port already connected",
	ErrNoMemory:                "out of memory",
	ErrTCPSend:                 "TCP send error",
	ErrHostUnreachable:         "host unreachable",
	ErrAccessDenied:            "access denied",
	ErrDeviceError:             "device error",
	ErrDeviceSrvNotSupp:        "service not supported",
	ErrDeviceInvalidGrp:        "invalid index group",
	ErrDeviceInvalidOffs:       "invalid index offset",
	ErrDeviceInvalidAccess:     "invalid access",
	ErrDeviceInvalidSize:       "invalid size",
	ErrDeviceInvalidData:       "invalid data",
	ErrDeviceNotReady:          "device not ready",
	ErrDeviceBusy:              "device busy",
	ErrDeviceNoMemory:          "device out of memory",
	ErrDeviceInvalidParam:      "invalid parameter",
	ErrDeviceNotFound:          "device not found",
	ErrDeviceSymbolNotFound:    "symbol not found",
	ErrDeviceInvalidState:      "invalid state",
	ErrDeviceNotifyHndInvalid:  "invalid notification handle",
	ErrDeviceNoMoreHdls:        "no more handles",
	ErrDeviceNotInit:           "device not initialized",
	ErrDeviceTimeout:           "device timeout",
}

// String renders a human-readable name for the error code, falling back to
// its hex value when the code is not one of the commonly named ones.
func (c ErrorCode) String() string {
	if name, ok := errorNames[c]; ok {
		return name
	}
	return fmt.Sprintf("ADS error 0x%04X", uint32(c))
}
