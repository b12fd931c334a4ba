//go:build darwin && cgo

package smc

/*
#cgo LDFLAGS: -framework IOKit

#include <stdint.h>
#include <string.h>
#include <mach/mach.h>
#include <IOKit/IOKitLib.h>

#define KERNEL_INDEX_SMC 2

#define SMC_CMD_READ_BYTES   5
#define SMC_CMD_READ_INDEX   8
#define SMC_CMD_READ_KEYINFO 9

#define SMC_RESULT_KEY_NOT_FOUND 0x84

typedef struct {
	char     major;
	char     minor;
	char     build;
	char     reserved[1];
	uint16_t release;
} SMCKeyDataVers;

typedef struct {
	uint16_t version;
	uint16_t length;
	uint32_t cpuPLimit;
	uint32_t gpuPLimit;
	uint32_t memPLimit;
} SMCKeyDataPLimit;

typedef struct {
	uint32_t dataSize;
	uint32_t dataType;
	char     dataAttributes;
} SMCKeyDataKeyInfo;

typedef struct {
	uint32_t          key;
	SMCKeyDataVers    vers;
	SMCKeyDataPLimit  pLimitData;
	SMCKeyDataKeyInfo keyInfo;
	char              result;
	char              status;
	char              data8;
	uint32_t          data32;
	unsigned char     bytes[32];
} SMCKeyData;

// Open results flattened to small codes so the Go side never has to
// compare against macro-valued IOReturn constants.
#define MACSTATS_OPEN_OK             0
#define MACSTATS_OPEN_NO_DEVICE     1
#define MACSTATS_OPEN_NOT_PRIVILEGED 2
#define MACSTATS_OPEN_FAILED        3

static int macstats_smc_open(io_connect_t *conn, int64_t *raw) {
	io_service_t service = IOServiceGetMatchingService(
		kIOMasterPortDefault, IOServiceMatching("AppleSMC"));
	if (service == 0) {
		return MACSTATS_OPEN_NO_DEVICE;
	}

	kern_return_t result = IOServiceOpen(service, mach_task_self(), 0, conn);
	IOObjectRelease(service);
	*raw = (int64_t)result;
	if (result == KERN_SUCCESS) {
		return MACSTATS_OPEN_OK;
	}
	if (result == kIOReturnNotPrivileged) {
		return MACSTATS_OPEN_NOT_PRIVILEGED;
	}
	return MACSTATS_OPEN_FAILED;
}

static void macstats_smc_close(io_connect_t conn) {
	IOServiceClose(conn);
}

static int macstats_smc_call(io_connect_t conn, SMCKeyData *in, SMCKeyData *out, int64_t *raw) {
	size_t outSize = sizeof(SMCKeyData);
	kern_return_t result = IOConnectCallStructMethod(
		conn, KERNEL_INDEX_SMC, in, sizeof(SMCKeyData), out, &outSize);
	*raw = (int64_t)result;
	return result == KERN_SUCCESS ? 0 : 1;
}
*/
import "C"

import (
	"encoding/binary"
	"fmt"
)

type darwinTransport struct {
	conn C.io_connect_t
}

func openTransport() (Transport, error) {
	var conn C.io_connect_t
	var raw C.int64_t
	switch C.macstats_smc_open(&conn, &raw) {
	case C.MACSTATS_OPEN_OK:
		return &darwinTransport{conn: conn}, nil
	case C.MACSTATS_OPEN_NOT_PRIVILEGED:
		return nil, errFactory.New(ErrInsufficientPrivileges)
	default:
		return nil, errFactory.WithData(ErrNotAvailable, fmt.Sprintf("IOServiceOpen: %#08x", int64(raw)))
	}
}

func (t *darwinTransport) ReadKey(key Key) (RawReading, error) {
	keyCode := keyToUint32(key)

	// First call resolves the declared type and size for the key
	var in, out C.SMCKeyData
	in.key = C.uint32_t(keyCode)
	in.data8 = C.char(C.SMC_CMD_READ_KEYINFO)

	if err := t.call(&in, &out, key); err != nil {
		return RawReading{}, err
	}

	size := uint32(out.keyInfo.dataSize)
	tag := uint32ToTag(uint32(out.keyInfo.dataType))
	if size > uint32(len(out.bytes)) {
		return RawReading{}, errFactory.WithData(ErrIOFailed,
			fmt.Sprintf("key %s reports %d bytes", key, size))
	}

	// Second call fetches the payload
	var readIn, readOut C.SMCKeyData
	readIn.key = C.uint32_t(keyCode)
	readIn.keyInfo.dataSize = C.uint32_t(size)
	readIn.data8 = C.char(C.SMC_CMD_READ_BYTES)

	if err := t.call(&readIn, &readOut, key); err != nil {
		return RawReading{}, err
	}

	data := make([]byte, size)
	for i := range data {
		data[i] = byte(readOut.bytes[i])
	}

	return RawReading{Key: key, Type: tag, Data: data}, nil
}

func (t *darwinTransport) KeyCount() (uint32, error) {
	raw, err := t.ReadKey("#KEY")
	if err != nil {
		return 0, err
	}
	if len(raw.Data) != 4 {
		return 0, errFactory.WithData(ErrIOFailed, "#KEY payload size")
	}

	return binary.BigEndian.Uint32(raw.Data), nil
}

func (t *darwinTransport) KeyByIndex(index uint32) (Key, error) {
	var in, out C.SMCKeyData
	in.data8 = C.char(C.SMC_CMD_READ_INDEX)
	in.data32 = C.uint32_t(index)

	if err := t.call(&in, &out, ""); err != nil {
		return "", err
	}

	return uint32ToKey(uint32(out.key)), nil
}

func (t *darwinTransport) Close() error {
	C.macstats_smc_close(t.conn)
	return nil
}

func (t *darwinTransport) call(in, out *C.SMCKeyData, key Key) error {
	var raw C.int64_t
	if C.macstats_smc_call(t.conn, in, out, &raw) != 0 {
		return errFactory.WithData(ErrIOFailed, fmt.Sprintf("SMC call: %#08x", int64(raw)))
	}
	if uint8(out.result) == C.SMC_RESULT_KEY_NOT_FOUND {
		return errFactory.WithData(ErrKeyNotFound, string(key))
	}
	if out.result != 0 {
		return errFactory.WithData(ErrIOFailed,
			fmt.Sprintf("key %s SMC result %#02x", key, uint8(out.result)))
	}

	return nil
}

func keyToUint32(key Key) uint32 {
	return binary.BigEndian.Uint32([]byte(key))
}

func uint32ToKey(v uint32) Key {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return Key(b[:])
}

func uint32ToTag(v uint32) TypeTag {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return TypeTag(b[:])
}
