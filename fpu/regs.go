package fpu

import "github.com/twitchyliquid64/golang-asm/obj/arm64"

// ARM64ContextBase is the reserved integer register the translator is
// required to keep pointed at the guest CPU state structure for the
// lifetime of a translated block.
const ARM64ContextBase = arm64.REG_R0

// ARM64AddressScratch is the reserved integer register every lane and
// vector transfer (see Cache.addrOf) uses to hold the address of the
// specific guest register it is loading or storing.
const ARM64AddressScratch = arm64.REG_R1

const maxHostScalarRegs = int(arm64.REG_F31-arm64.REG_F0) + 1
